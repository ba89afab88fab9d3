package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/getlumos/lumos-action/internal/version"
)

func TestRunVersion(t *testing.T) {
	orig := version.Version
	version.Version = "v0.3.1"
	defer func() { version.Version = orig }()

	tests := []struct {
		name  string
		flags []string
		check func(t *testing.T, out string)
	}{
		{
			name: "short",
			check: func(t *testing.T, out string) {
				if out != "lumos-action v0.3.1\n" {
					t.Errorf("output = %q", out)
				}
			},
		},
		{
			name:  "verbose",
			flags: []string{"--verbose"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "built") || !strings.Contains(out, "v0.3.1") {
					t.Errorf("verbose output = %q", out)
				}
			},
		},
		{
			name:  "json",
			flags: []string{"--json"},
			check: func(t *testing.T, out string) {
				var info version.Info
				if err := json.Unmarshal([]byte(out), &info); err != nil {
					t.Fatalf("invalid JSON: %v", err)
				}
				if info.Version != "v0.3.1" {
					t.Errorf("version = %q, want v0.3.1", info.Version)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			versionCmd.SetOut(&buf)
			versionCmd.Flags().Set("json", "false")
			versionCmd.Flags().Set("verbose", "false")
			for _, f := range tt.flags {
				versionCmd.Flags().Set(strings.TrimPrefix(f, "--"), "true")
			}

			if err := runVersion(versionCmd, nil); err != nil {
				t.Fatalf("runVersion() error = %v", err)
			}
			tt.check(t, buf.String())
		})
	}
}
