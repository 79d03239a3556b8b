package domain

import (
	"github.com/Masterminds/semver/v3"
)

// ValidateVersionString checks that s is a strict MAJOR.MINOR.PATCH version.
// Build metadata is rejected outright: published artifacts must be
// addressable by their core version alone.
func ValidateVersionString(s string) error {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return ErrInvalidSemver
	}
	if v.Metadata() != "" {
		return ErrInvalidSemver
	}
	return nil
}

// CompareVersions orders two version strings lexicographically on
// (major, minor, patch). Prerelease and build suffixes are ignored, so
// versions equal on all three components compare equal. Returns -1, 0 or 1.
func CompareVersions(a, b string) (int, error) {
	va, err := semver.StrictNewVersion(a)
	if err != nil {
		return 0, ErrInvalidSemver
	}
	vb, err := semver.StrictNewVersion(b)
	if err != nil {
		return 0, ErrInvalidSemver
	}
	if c := compareUint(va.Major(), vb.Major()); c != 0 {
		return c, nil
	}
	if c := compareUint(va.Minor(), vb.Minor()); c != 0 {
		return c, nil
	}
	return compareUint(va.Patch(), vb.Patch()), nil
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
