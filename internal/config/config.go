package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logger      LoggerConfig
	Evaluation  EvaluationConfig
	PIIScanner  PIIScannerConfig
	ObjectStore ObjectStoreConfig
	Compliance  ComplianceConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type LoggerConfig struct {
	Level  string
	Format string
}

type EvaluationConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	Namespace      string
	RunnerImage    string
	JobDeadline    time.Duration
	SweepInterval  time.Duration

	// Reference bounds for the latency/throughput score normalization.
	RefLatencyMs     float64
	MaxLatencyMs     float64
	RefThroughputRPS float64
}

type PIIScannerConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

type ObjectStoreConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

type ComplianceConfig struct {
	// RequireCompliantPublish hard-fails publishing a version trained on
	// data that violates any of PublishStandards.
	RequireCompliantPublish bool
	PublishStandards        []string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "registry")
	v.SetDefault("DB_PASSWORD", "registry")
	v.SetDefault("DB_NAME", "model_lineage")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("EVALUATION_ENABLED", false)
	v.SetDefault("EVALUATION_IN_CLUSTER", false)
	v.SetDefault("EVALUATION_KUBECONFIG", "")
	v.SetDefault("EVALUATION_NAMESPACE", "model-evaluation")
	v.SetDefault("EVALUATION_RUNNER_IMAGE", "benchmark-runner:latest")
	v.SetDefault("EVALUATION_JOB_DEADLINE", "1h")
	v.SetDefault("EVALUATION_SWEEP_INTERVAL", "5m")
	v.SetDefault("EVALUATION_REF_LATENCY_MS", 50.0)
	v.SetDefault("EVALUATION_MAX_LATENCY_MS", 2000.0)
	v.SetDefault("EVALUATION_REF_THROUGHPUT_RPS", 100.0)
	v.SetDefault("PII_SCANNER_ENABLED", false)
	v.SetDefault("PII_SCANNER_URL", "http://localhost:8090")
	v.SetDefault("PII_SCANNER_TIMEOUT", "30s")
	v.SetDefault("OBJECT_STORE_ENABLED", false)
	v.SetDefault("OBJECT_STORE_URL", "http://localhost:9000")
	v.SetDefault("OBJECT_STORE_TIMEOUT", "15s")
	v.SetDefault("COMPLIANCE_REQUIRE_ON_PUBLISH", false)
	v.SetDefault("COMPLIANCE_PUBLISH_STANDARDS", "gdpr")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), 30*time.Minute),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Evaluation: EvaluationConfig{
			Enabled:          v.GetBool("EVALUATION_ENABLED"),
			InCluster:        v.GetBool("EVALUATION_IN_CLUSTER"),
			KubeConfigPath:   v.GetString("EVALUATION_KUBECONFIG"),
			Namespace:        v.GetString("EVALUATION_NAMESPACE"),
			RunnerImage:      v.GetString("EVALUATION_RUNNER_IMAGE"),
			JobDeadline:      parseDuration(v.GetString("EVALUATION_JOB_DEADLINE"), time.Hour),
			SweepInterval:    parseDuration(v.GetString("EVALUATION_SWEEP_INTERVAL"), 5*time.Minute),
			RefLatencyMs:     v.GetFloat64("EVALUATION_REF_LATENCY_MS"),
			MaxLatencyMs:     v.GetFloat64("EVALUATION_MAX_LATENCY_MS"),
			RefThroughputRPS: v.GetFloat64("EVALUATION_REF_THROUGHPUT_RPS"),
		},
		PIIScanner: PIIScannerConfig{
			Enabled: v.GetBool("PII_SCANNER_ENABLED"),
			URL:     v.GetString("PII_SCANNER_URL"),
			Timeout: parseDuration(v.GetString("PII_SCANNER_TIMEOUT"), 30*time.Second),
		},
		ObjectStore: ObjectStoreConfig{
			Enabled: v.GetBool("OBJECT_STORE_ENABLED"),
			URL:     v.GetString("OBJECT_STORE_URL"),
			Timeout: parseDuration(v.GetString("OBJECT_STORE_TIMEOUT"), 15*time.Second),
		},
		Compliance: ComplianceConfig{
			RequireCompliantPublish: v.GetBool("COMPLIANCE_REQUIRE_ON_PUBLISH"),
			PublishStandards:        splitList(v.GetString("COMPLIANCE_PUBLISH_STANDARDS")),
		},
	}

	return cfg, nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
