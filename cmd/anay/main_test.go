package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VanshArora01/anay/internal/config"
)

func TestWriteIfNotExists_NewFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.txt")

	writeIfNotExists(path, "test content")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "test content" {
		t.Errorf("content = %q, want 'test content'", string(data))
	}
}

func TestWriteIfNotExists_ExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.txt")

	os.WriteFile(path, []byte("original"), 0644)

	writeIfNotExists(path, "new content")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("content = %q, want 'original'", string(data))
	}
}

func TestProviderDisplay(t *testing.T) {
	if got := providerDisplay(""); got != "gemini (default)" {
		t.Errorf("providerDisplay(\"\") = %q", got)
	}
	if got := providerDisplay("openai"); got != "openai" {
		t.Errorf("providerDisplay(openai) = %q", got)
	}
}

// mockAssistant implements Assistant for testing the CLI loop.
type mockAssistant struct {
	replies  map[string]string
	handled  []string
	sessions []string
	closed   bool
}

func (m *mockAssistant) Handle(ctx context.Context, session, text string) string {
	m.handled = append(m.handled, text)
	m.sessions = append(m.sessions, session)
	if reply, ok := m.replies[text]; ok {
		return reply
	}
	return "ok: " + text
}

func (m *mockAssistant) Close() error {
	m.closed = true
	return nil
}

func TestRunAgent_SingleMessage(t *testing.T) {
	mock := &mockAssistant{}
	var stdout bytes.Buffer

	messageFlag = "open chrome"
	defer func() { messageFlag = "" }()

	err := runAgentWithOptions(AgentOptions{
		Factory: func(cfg *config.Config) (Assistant, error) { return mock, nil },
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("runAgentWithOptions error: %v", err)
	}

	if len(mock.handled) != 1 || mock.handled[0] != "open chrome" {
		t.Errorf("handled = %v", mock.handled)
	}
	if mock.sessions[0] != "cli" {
		t.Errorf("session = %q, want cli", mock.sessions[0])
	}
	if !strings.Contains(stdout.String(), "ok: open chrome") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !mock.closed {
		t.Error("assistant should be closed")
	}
}

func TestRunAgent_SingleMessage_EmptyReplyNotPrinted(t *testing.T) {
	mock := &mockAssistant{replies: map[string]string{"hush": ""}}
	var stdout bytes.Buffer

	messageFlag = "hush"
	defer func() { messageFlag = "" }()

	if err := runAgentWithOptions(AgentOptions{
		Factory: func(cfg *config.Config) (Assistant, error) { return mock, nil },
		Stdout:  &stdout,
	}); err != nil {
		t.Fatalf("runAgentWithOptions error: %v", err)
	}

	if strings.Contains(stdout.String(), "\n\n") && strings.TrimSpace(stdout.String()) != "" {
		t.Errorf("unexpected output for empty reply: %q", stdout.String())
	}
}

func TestRunAgent_REPL(t *testing.T) {
	mock := &mockAssistant{}
	var stdout bytes.Buffer
	stdin := strings.NewReader("open notepad\n\nexit\n")

	messageFlag = ""

	err := runAgentWithOptions(AgentOptions{
		Factory: func(cfg *config.Config) (Assistant, error) { return mock, nil },
		Stdin:   stdin,
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("runAgentWithOptions error: %v", err)
	}

	if len(mock.handled) != 1 || mock.handled[0] != "open notepad" {
		t.Errorf("handled = %v, want just 'open notepad'", mock.handled)
	}
	if mock.sessions[0] != "cli-repl" {
		t.Errorf("session = %q, want cli-repl", mock.sessions[0])
	}
	if !strings.Contains(stdout.String(), "ok: open notepad") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunAgent_FactoryError(t *testing.T) {
	messageFlag = "hello"
	defer func() { messageFlag = "" }()

	err := runAgentWithOptions(AgentOptions{
		Factory: func(cfg *config.Config) (Assistant, error) {
			return nil, fmt.Errorf("no key")
		},
	})
	if err == nil {
		t.Error("expected factory error to propagate")
	}
}
