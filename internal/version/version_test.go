package version

import (
	"strings"
	"testing"
)

func TestPlainHasNoEscapes(t *testing.T) {
	v := Plain()
	if strings.Contains(v, "\x1b") {
		t.Fatalf("plain version contains escape codes: %q", v)
	}
	if !strings.HasPrefix(v, Major+"."+Minor+"."+Patch) {
		t.Fatalf("version = %q", v)
	}
}
