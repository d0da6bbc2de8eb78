package bump

import (
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/Iron-Ham/versioner/internal/errors"
)

func TestIncrement(t *testing.T) {
	tests := []struct {
		from    string
		keyword string
		preid   string
		want    string
	}{
		{"1.2.3", Major, "", "2.0.0"},
		{"1.2.3", Minor, "", "1.3.0"},
		{"1.2.3", Patch, "", "1.2.4"},
		{"2.0.0-beta.1", Major, "", "2.0.0"},
		{"1.3.0-beta.1", Minor, "", "1.3.0"},
		{"1.2.4-rc.0", Patch, "", "1.2.4"},
		{"1.2.3-rc.0", Major, "", "2.0.0"},
		{"1.2.3", Premajor, "beta", "2.0.0-beta.0"},
		{"1.2.3", Preminor, "", "1.3.0-0"},
		{"1.2.3", Prepatch, "alpha", "1.2.4-alpha.0"},
		{"1.2.3", Prerelease, "beta", "1.2.4-beta.0"},
		{"1.2.4-beta.0", Prerelease, "beta", "1.2.4-beta.1"},
		{"1.2.4-beta.9", Prerelease, "", "1.2.4-beta.10"},
		{"1.2.4-alpha.3", Prerelease, "beta", "1.2.4-beta.0"},
		{"1.2.4-beta", Prerelease, "beta", "1.2.4-beta.0"},
		{"1.2.4-beta", Prerelease, "", "1.2.4-beta.0"},
	}

	for _, tt := range tests {
		t.Run(tt.from+"/"+tt.keyword+"/"+tt.preid, func(t *testing.T) {
			got, err := Increment(semver.MustParse(tt.from), tt.keyword, tt.preid)
			if err != nil {
				t.Fatalf("Increment() error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Increment(%s, %s, %q) = %s, want %s", tt.from, tt.keyword, tt.preid, got, tt.want)
			}
		})
	}
}

func TestIncrement_UnknownKeyword(t *testing.T) {
	_, err := Increment(semver.MustParse("1.0.0"), "huge", "")
	if !errors.Is(err, errors.ErrInvalidVersion) {
		t.Errorf("Increment(huge) error = %v, want ErrInvalidVersion", err)
	}
}

func TestIsKeyword(t *testing.T) {
	for _, k := range Keywords() {
		if !IsKeyword(k) {
			t.Errorf("IsKeyword(%q) = false", k)
		}
	}
	if IsKeyword("1.0.0") {
		t.Error("IsKeyword(1.0.0) = true")
	}
}
