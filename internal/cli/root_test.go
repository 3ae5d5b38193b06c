package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/reftree/pkg/buildinfo"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"layout", "visualize", "render", "view", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestVersionOutput(t *testing.T) {
	old := buildinfo.Version
	buildinfo.Version = "1.2.3"
	defer func() { buildinfo.Version = old }()

	out, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("version output = %q, want it to contain 1.2.3", out)
	}
}
