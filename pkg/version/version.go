// Package version provides strict semantic version comparison, selection,
// and bumping for prompt versions. Versions are always three numeric
// components ("major.minor.patch"); anything else is rejected rather than
// coerced.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Latest is the symbolic version that resolves to the highest available
// concrete version.
const Latest = "latest"

// Bump identifies which component of a version to increment.
type Bump string

const (
	BumpMajor Bump = "major"
	BumpMinor Bump = "minor"
	BumpPatch Bump = "patch"
)

// InvalidVersionError reports a version string that is not a strict
// "major.minor.patch" triple.
type InvalidVersionError struct {
	Input string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid semantic version %q (expected major.minor.patch)", e.Input)
}

// parse validates and parses a strict three-component version.
func parse(v string) (*semver.Version, error) {
	parsed, err := semver.StrictNewVersion(v)
	if err != nil {
		return nil, &InvalidVersionError{Input: v}
	}
	// StrictNewVersion accepts prerelease/build metadata; prompt versions
	// are plain triples only.
	if parsed.Prerelease() != "" || parsed.Metadata() != "" {
		return nil, &InvalidVersionError{Input: v}
	}
	return parsed, nil
}

// Compare compares two versions numerically component-by-component.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
// "10.0.0" sorts above "9.0.0"; comparison is never lexicographic.
func Compare(a, b string) (int, error) {
	va, err := parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// LatestOf returns the highest version in the given set.
// Returns an error if the set is empty or any member is malformed.
func LatestOf(versions []string) (string, error) {
	if len(versions) == 0 {
		return "", fmt.Errorf("no versions to select from")
	}

	best := versions[0]
	bestParsed, err := parse(best)
	if err != nil {
		return "", err
	}

	for _, v := range versions[1:] {
		parsed, err := parse(v)
		if err != nil {
			return "", err
		}
		if parsed.GreaterThan(bestParsed) {
			best = v
			bestParsed = parsed
		}
	}

	return best, nil
}

// Increment bumps the named component, zeroing all lower components.
func Increment(v string, bump Bump) (string, error) {
	parsed, err := parse(v)
	if err != nil {
		return "", err
	}

	var next semver.Version
	switch bump {
	case BumpMajor:
		next = parsed.IncMajor()
	case BumpMinor:
		next = parsed.IncMinor()
	case BumpPatch:
		next = parsed.IncPatch()
	default:
		return "", fmt.Errorf("unknown version bump %q", bump)
	}

	return next.String(), nil
}

// IsValid reports whether v is a well-formed "major.minor.patch" triple.
func IsValid(v string) bool {
	_, err := parse(v)
	return err == nil
}
