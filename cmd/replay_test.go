package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReplayLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "replay.yaml")
	content := `
from: 2025-03-01
to: 2025-03-31
longOnly: true
output: daily.jsonl
`
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c := &replayCmd{config: file}
	if err := c.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if c.from != "2025-03-01" || c.to != "2025-03-31" || !c.longOnly || c.output != "daily.jsonl" {
		t.Errorf("loaded config = %+v", c)
	}
}

func TestReplayLoadConfigFlagsWin(t *testing.T) {
	file := filepath.Join(t.TempDir(), "replay.yaml")
	if err := os.WriteFile(file, []byte("from: 2025-03-01\nto: 2025-03-31\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := &replayCmd{config: file, from: "2025-02-01"}
	if err := c.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if c.from != "2025-02-01" {
		t.Errorf("explicit -from overridden: %s", c.from)
	}
	if c.to != "2025-03-31" {
		t.Errorf("unset -to not filled: %s", c.to)
	}
}

func TestReplayLoadConfigErrors(t *testing.T) {
	c := &replayCmd{config: filepath.Join(t.TempDir(), "absent.yaml")}
	if err := c.loadConfig(); err == nil {
		t.Error("a missing config file must be an error")
	}

	file := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(file, []byte("from: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	c = &replayCmd{config: file}
	if err := c.loadConfig(); err == nil {
		t.Error("malformed YAML must be an error")
	}
}
