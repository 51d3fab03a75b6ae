package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dbsweep/dbsweep/internal/maintenance"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}

	if rootCmd.Use != "dbsweep" {
		t.Errorf("expected Use to be 'dbsweep', got %q", rootCmd.Use)
	}

	for _, name := range []string{"env", "database-url", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag --%s", name)
		}
	}
}

func TestVersionSet(t *testing.T) {
	if getVersion() == "" {
		t.Error("version should not be empty")
	}

	if rootCmd.Version == "" {
		t.Error("rootCmd.Version should not be empty")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != getVersion()+"\n" {
		t.Errorf("expected %q, got %q", getVersion()+"\n", out)
	}
}

func TestFormStartsInDryRun(t *testing.T) {
	flag := formCmd.Flags().Lookup("dry-run")
	if flag == nil {
		t.Fatal("expected form to have a --dry-run flag")
	}
	if flag.DefValue != "true" {
		t.Errorf("expected form to start with dry run enabled, got default %q", flag.DefValue)
	}
}

func TestCommandsRegistered(t *testing.T) {
	commands := rootCmd.Commands()
	if len(commands) == 0 {
		t.Fatal("expected at least one subcommand to be registered")
	}

	expectedCommands := map[string]bool{
		"list":    false,
		"run":     false,
		"form":    false,
		"version": false,
	}

	for _, cmd := range commands {
		if _, exists := expectedCommands[cmd.Name()]; exists {
			expectedCommands[cmd.Name()] = true
		}
	}

	for cmdName, registered := range expectedCommands {
		if !registered {
			t.Errorf("expected command %q to be registered", cmdName)
		}
	}
}

func TestListCommand(t *testing.T) {
	t.Cleanup(func() { listFormat = "table" })

	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, op := range maintenance.Builtin() {
		if !strings.Contains(out, op.ID) {
			t.Errorf("expected table to contain %q:\n%s", op.ID, out)
		}
	}
	if strings.Index(out, maintenance.OpExpiredTransients) > strings.Index(out, maintenance.OpSpamComments) {
		t.Errorf("expected catalog order in listing:\n%s", out)
	}

	out, err = execute(t, "list", "--format", "json")
	if err != nil {
		t.Fatalf("list --format json failed: %v", err)
	}
	var ops []map[string]string
	if err := json.Unmarshal([]byte(out), &ops); err != nil {
		t.Fatalf("expected JSON output, got %v:\n%s", err, out)
	}
	if len(ops) != len(maintenance.Builtin()) || ops[0]["id"] != maintenance.OpExpiredTransients {
		t.Errorf("unexpected JSON listing: %v", ops)
	}

	if _, err := execute(t, "list", "--format", "yaml"); err == nil {
		t.Error("expected unsupported format to fail")
	}
}
