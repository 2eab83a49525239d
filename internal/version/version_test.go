// ABOUTME: Tests for version constants
// ABOUTME: Checks the values reported in server/hello are well formed
package version

import (
	"regexp"
	"strings"
	"testing"
)

var semver = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

func TestVersionIsSemver(t *testing.T) {
	if !semver.MatchString(Version) {
		t.Errorf("Version %q is not major.minor.patch", Version)
	}
}

func TestIdentityStrings(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"product", Product},
		{"manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.TrimSpace(tt.value) == "" {
				t.Fatalf("%s is empty", tt.name)
			}
			if tt.value != strings.TrimSpace(tt.value) {
				t.Errorf("%s %q has surrounding whitespace", tt.name, tt.value)
			}
			if len(tt.value) > 64 {
				t.Errorf("%s is %d bytes, too long for a hello payload", tt.name, len(tt.value))
			}
		})
	}
}

func TestProductNamesManufacturer(t *testing.T) {
	if !strings.HasPrefix(Product, Manufacturer) {
		t.Errorf("Product %q should start with manufacturer %q", Product, Manufacturer)
	}
}
