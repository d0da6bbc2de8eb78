package bump

import (
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/Iron-Ham/versioner/internal/errors"
)

// Release keywords accepted as a release type.
const (
	Major      = "major"
	Minor      = "minor"
	Patch      = "patch"
	Premajor   = "premajor"
	Preminor   = "preminor"
	Prepatch   = "prepatch"
	Prerelease = "prerelease"
)

// Keywords returns every release keyword.
func Keywords() []string {
	return []string{Major, Minor, Patch, Premajor, Preminor, Prepatch, Prerelease}
}

// IsKeyword reports whether s is a release keyword.
func IsKeyword(s string) bool {
	return slices.Contains(Keywords(), s)
}

// Increment applies a release keyword to v. preid is only used by the pre*
// keywords. Increments follow npm semver: bumping a prerelease to the
// release it precedes drops the prerelease instead of skipping a version.
func Increment(v *semver.Version, keyword, preid string) (*semver.Version, error) {
	pre := v.Prerelease()

	switch keyword {
	case Major:
		if pre != "" && v.Minor() == 0 && v.Patch() == 0 {
			return semver.New(v.Major(), 0, 0, "", ""), nil
		}
		return semver.New(v.Major()+1, 0, 0, "", ""), nil
	case Minor:
		if pre != "" && v.Patch() == 0 {
			return semver.New(v.Major(), v.Minor(), 0, "", ""), nil
		}
		return semver.New(v.Major(), v.Minor()+1, 0, "", ""), nil
	case Patch:
		if pre != "" {
			return semver.New(v.Major(), v.Minor(), v.Patch(), "", ""), nil
		}
		return semver.New(v.Major(), v.Minor(), v.Patch()+1, "", ""), nil
	case Premajor:
		return semver.New(v.Major()+1, 0, 0, nextPrerelease("", preid), ""), nil
	case Preminor:
		return semver.New(v.Major(), v.Minor()+1, 0, nextPrerelease("", preid), ""), nil
	case Prepatch:
		return semver.New(v.Major(), v.Minor(), v.Patch()+1, nextPrerelease("", preid), ""), nil
	case Prerelease:
		if pre == "" {
			return semver.New(v.Major(), v.Minor(), v.Patch()+1, nextPrerelease("", preid), ""), nil
		}
		return semver.New(v.Major(), v.Minor(), v.Patch(), nextPrerelease(pre, preid), ""), nil
	default:
		return nil, errors.NewValidationError("unknown release type").
			WithField("releaseType").
			WithValue(keyword).
			WithCause(errors.ErrInvalidVersion)
	}
}

// nextPrerelease increments the last numeric identifier of current, or
// starts a new series for preid.
func nextPrerelease(current, preid string) string {
	if current == "" {
		if preid != "" {
			return preid + ".0"
		}
		return "0"
	}

	parts := strings.Split(current, ".")
	incremented := false
	for i := len(parts) - 1; i >= 0; i-- {
		if n, err := strconv.ParseUint(parts[i], 10, 64); err == nil {
			parts[i] = strconv.FormatUint(n+1, 10)
			incremented = true
			break
		}
	}
	if !incremented {
		parts = append(parts, "0")
	}

	if preid != "" {
		if parts[0] != preid || len(parts) < 2 || !isNumeric(parts[1]) {
			parts = []string{preid, "0"}
		}
	}
	return strings.Join(parts, ".")
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// hasPreid reports whether v is a prerelease in the preid series.
func hasPreid(v *semver.Version, preid string) bool {
	pre := v.Prerelease()
	return pre != "" && (pre == preid || strings.HasPrefix(pre, preid+"."))
}
