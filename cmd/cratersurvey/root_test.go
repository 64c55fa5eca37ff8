package main

import (
	"bytes"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has expected subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"analyze":   false,
			"aggregate": false,
			"compare":   false,
			"mesh":      false,
			"version":   false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("subcommand %s missing", name)
			}
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		if cmd.PersistentFlags().Lookup("verbose") == nil {
			t.Error("expected persistent --verbose flag")
		}
	})
}

func TestRootCmdHelp(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("cratersurvey")) {
		t.Error("help output missing command name")
	}
}

func TestCompareCmdArgs(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"compare", "only-one"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for wrong arg count")
	}
}

func TestAnalyzeCmdNoTiles(t *testing.T) {
	t.Parallel()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"analyze", "themis"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when no tiles are configured")
	}
}
