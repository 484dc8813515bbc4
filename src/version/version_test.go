// +build !unit

package version

import (
	"strings"
	"testing"
)

// TestFlagSuffix verifies that a non-empty Flag is carried in the full
// version string. Release builds clear the flag.
func TestFlagSuffix(t *testing.T) {
	if len(Flag) > 0 && !strings.HasSuffix(Version, Flag) {
		t.Fatalf("Version %s should carry the %s flag", Version, Flag)
	}
}
