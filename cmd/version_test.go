package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	got := out.String()
	if !strings.Contains(got, "Figmant") {
		t.Errorf("version output missing product name: %q", got)
	}
	if !strings.Contains(got, AppVersion) {
		t.Errorf("version output missing version %q: %q", AppVersion, got)
	}
}
