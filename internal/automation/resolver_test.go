package automation

import (
	"strings"
	"testing"
)

func TestExpandReferences_FilePronoun(t *testing.T) {
	ec := ExecutionContext{LastModifiedFile: "/home/v/report.txt"}
	got := ExpandReferences("open it", ec)
	if got != `open the file "/home/v/report.txt"` {
		t.Errorf("got %q", got)
	}
}

func TestExpandReferences_ModifiedWinsOverCreated(t *testing.T) {
	ec := ExecutionContext{
		LastCreatedFile:  "/c.txt",
		LastModifiedFile: "/m.txt",
	}
	got := ExpandReferences("fix it", ec)
	if !strings.Contains(got, "/m.txt") {
		t.Errorf("got %q, want reference to most recently modified file", got)
	}
}

func TestExpandReferences_FixTheCode(t *testing.T) {
	ec := ExecutionContext{LastModifiedFile: "/src/main.py"}
	got := ExpandReferences("fix the code", ec)
	if !strings.Contains(got, `the code in "/src/main.py"`) {
		t.Errorf("got %q", got)
	}
}

func TestExpandReferences_AppPronoun(t *testing.T) {
	ec := ExecutionContext{LastOpenedApp: "spotify"}
	got := ExpandReferences("close that app", ec)
	if got != "close spotify" {
		t.Errorf("got %q", got)
	}
}

func TestExpandReferences_NoContextPassesThrough(t *testing.T) {
	got := ExpandReferences("open it", ExecutionContext{})
	if got != "open it" {
		t.Errorf("got %q, want text unchanged", got)
	}
}
