package evalcluster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"model-lineage-registry/internal/config"
	ports "model-lineage-registry/internal/core/ports/output"
)

type clusterClient struct {
	client    kubernetes.Interface
	enabled   bool
	namespace string
	image     string
}

// NewClusterClient builds the evaluation-cluster adapter. Benchmark suites
// run as Kubernetes Jobs; the cluster posts results back through the
// result-ingestion endpoint.
func NewClusterClient(cfg *config.EvaluationConfig) (ports.EvaluationCluster, error) {
	if !cfg.Enabled {
		return &clusterClient{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create k8s client: %w", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "model-evaluation"
	}
	return &clusterClient{
		client:    client,
		enabled:   true,
		namespace: namespace,
		image:     cfg.RunnerImage,
	}, nil
}

func (c *clusterClient) Dispatch(ctx context.Context, versionID uuid.UUID, benchmarks []string, deadline time.Duration) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("evaluation cluster integration disabled")
	}

	jobName := fmt.Sprintf("eval-%s-%d", versionID.String()[:8], time.Now().Unix())
	deadlineSeconds := int64(deadline / time.Second)
	backoffLimit := int32(0)

	job := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:      jobName,
			Namespace: c.namespace,
			Labels: map[string]string{
				"app.kubernetes.io/managed-by": "model-lineage-registry",
				"registry/model-version-id":    versionID.String(),
			},
		},
		Spec: batchv1.JobSpec{
			ActiveDeadlineSeconds: &deadlineSeconds,
			BackoffLimit:          &backoffLimit,
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyNever,
					Containers: []corev1.Container{
						{
							Name:  "benchmark-runner",
							Image: c.image,
							Args: []string{
								"--model-version-id", versionID.String(),
								"--benchmarks", strings.Join(benchmarks, ","),
							},
						},
					},
				},
			},
		},
	}

	created, err := c.client.BatchV1().Jobs(c.namespace).Create(ctx, job, metav1.CreateOptions{})
	if err != nil {
		return "", fmt.Errorf("create evaluation job: %w", err)
	}
	log.WithFields(log.Fields{
		"job":        created.Name,
		"namespace":  c.namespace,
		"version_id": versionID,
	}).Info("evaluation job created")
	return created.Name, nil
}
