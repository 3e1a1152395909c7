package automation

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ExecutionContext is the short-term memory shared between turns: which file
// was touched last, which app is in the foreground, what the assistant just
// did. It is persisted as a single JSON document so a restart picks up where
// the last session left off.
type ExecutionContext struct {
	LastCreatedFile  string `json:"last_created_file,omitempty"`
	LastOpenedFile   string `json:"last_opened_file,omitempty"`
	LastModifiedFile string `json:"last_modified_file,omitempty"`
	LastOpenedApp    string `json:"last_opened_app,omitempty"`
	ActiveProjectDir string `json:"active_project_dir,omitempty"`
	LastTaskSummary  string `json:"last_task_summary,omitempty"`
	LastContentType  string `json:"last_content_type,omitempty"`
	LastUpdated      string `json:"last_updated,omitempty"`
}

// ContextStore reads and writes the execution context file. All access goes
// through the store so concurrent turns cannot interleave partial writes.
type ContextStore struct {
	path string
	mu   sync.Mutex
}

func NewContextStore(path string) *ContextStore {
	return &ContextStore{path: path}
}

// Get returns the persisted context. Read or decode failures return the zero
// value: a fresh context is always a safe answer.
func (s *ContextStore) Get() ExecutionContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *ContextStore) read() ExecutionContext {
	var ec ExecutionContext
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ec
	}
	if err := json.Unmarshal(data, &ec); err != nil {
		log.Printf("[context] corrupt context file, starting fresh: %v", err)
		return ExecutionContext{}
	}
	return ec
}

// Update merges every non-empty field of partial into the stored context and
// stamps the update time. Write failures are logged and dropped: losing a
// context update must never fail the command that produced it.
func (s *ContextStore) Update(partial ExecutionContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ec := s.read()
	if partial.LastCreatedFile != "" {
		ec.LastCreatedFile = partial.LastCreatedFile
	}
	if partial.LastOpenedFile != "" {
		ec.LastOpenedFile = partial.LastOpenedFile
	}
	if partial.LastModifiedFile != "" {
		ec.LastModifiedFile = partial.LastModifiedFile
	}
	if partial.LastOpenedApp != "" {
		ec.LastOpenedApp = partial.LastOpenedApp
	}
	if partial.ActiveProjectDir != "" {
		ec.ActiveProjectDir = partial.ActiveProjectDir
	}
	if partial.LastTaskSummary != "" {
		ec.LastTaskSummary = partial.LastTaskSummary
	}
	if partial.LastContentType != "" {
		ec.LastContentType = partial.LastContentType
	}
	ec.LastUpdated = time.Now().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("[context] create context dir: %v", err)
		return
	}
	data, err := json.MarshalIndent(ec, "", "  ")
	if err != nil {
		log.Printf("[context] encode context: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("[context] write context: %v", err)
	}
}

// ResolveReference picks the file a vague reference points at. The default
// priority is most-recently-modified, then opened, then created; a hint
// mentioning "created" flips the priority so "the file I just made" wins even
// after edits elsewhere. A created hint never falls back to the other slots,
// even when nothing was created yet.
func (ec ExecutionContext) ResolveReference(hint string) string {
	if strings.Contains(hint, "created") {
		return ec.LastCreatedFile
	}
	for _, p := range []string{ec.LastModifiedFile, ec.LastOpenedFile, ec.LastCreatedFile} {
		if p != "" {
			return p
		}
	}
	return ""
}
