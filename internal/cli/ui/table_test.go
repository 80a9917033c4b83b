package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"ID", "TYPE", "PATH"}, true)

	table.AddRow("secrets", "always", ".ai-guards/rules/security/secrets.md")
	table.AddRow("naming", "manual")

	table.Render()

	expected := strings.Join([]string{
		"ID       TYPE    PATH",
		"───────  ──────  ────────────────────────────────────",
		"secrets  always  .ai-guards/rules/security/secrets.md",
		"naming   manual",
		"",
	}, "\n")

	if buf.String() != expected {
		t.Errorf("Table output mismatch\nGot:\n%s\nWant:\n%s", buf.String(), expected)
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{}, true)
	table.AddRow("ignored")
	table.Render()

	if buf.Len() != 0 {
		t.Errorf("Expected empty output, got %q", buf.String())
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("ID", "secrets")
	table.AddRow("Rule type", "always")
	table.Render()

	expected := "ID:        secrets\nRule type: always\n"
	if buf.String() != expected {
		t.Errorf("KeyValueTable output = %q, want %q", buf.String(), expected)
	}
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	List(&buf, []string{"a", "b"}, true)

	if buf.String() != "• a\n• b\n" {
		t.Errorf("List output = %q", buf.String())
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Rules", true)

	if buf.String() != "Rules\n─────\n" {
		t.Errorf("Header output = %q", buf.String())
	}
}
