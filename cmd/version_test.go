package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/WowJuicy/QuickLauncher-v2/internal/config"
)

func TestWriteVersion(t *testing.T) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.StorePath = "/home/u/.qlaunch/keywords.txt"
	cfg.Roots = []string{"/mnt/c", "/mnt/d"}
	cfg.Workers = 3

	var buf bytes.Buffer
	writeVersion(&buf, "/home/u/.qlaunch/config.yaml", cfg, 12)
	out := buf.String()

	for _, want := range []string{
		"qlaunch dev (commit n/a, built n/a)",
		"config:   /home/u/.qlaunch/config.yaml",
		"store:    /home/u/.qlaunch/keywords.txt (12 keywords)",
		"roots:    2 configured",
		"workers:  3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	cfg.Roots = nil
	writeVersion(&buf, "/home/u/.qlaunch/config.yaml", cfg, -1)
	if !strings.Contains(buf.String(), "(not created yet)") || !strings.Contains(buf.String(), "all volumes") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
