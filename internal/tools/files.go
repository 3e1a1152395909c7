package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/VanshArora01/anay/internal/automation"
)

const maxReadableSize = 1 << 20 // don't dump huge files into chat

// FileManager implements real filesystem operations. Destructive actions are
// still implemented here; the safety gate decides whether they run.
type FileManager struct {
	loc Locations
}

func NewFileManager(loc Locations) *FileManager {
	return &FileManager{loc: loc}
}

func (f *FileManager) WriteFile(_ context.Context, path, content string) (automation.Result, error) {
	abs := f.loc.ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return automation.Result{}, fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return automation.Result{}, fmt.Errorf("write %s: %w", abs, err)
	}
	return automation.Result{OK: true, Message: "Created file: " + filepath.Base(abs)}, nil
}

func (f *FileManager) AppendFile(_ context.Context, path, content string) (automation.Result, error) {
	abs := f.loc.ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return automation.Result{}, fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return automation.Result{}, fmt.Errorf("open %s: %w", abs, err)
	}
	defer file.Close()
	if _, err := file.WriteString(content); err != nil {
		return automation.Result{}, fmt.Errorf("append %s: %w", abs, err)
	}
	return automation.Result{OK: true, Message: "Appended to " + filepath.Base(abs)}, nil
}

func (f *FileManager) ReadFile(_ context.Context, path string) (automation.Result, error) {
	abs := f.loc.ResolvePath(path)
	info, err := os.Stat(abs)
	if err != nil {
		return automation.Result{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return automation.Result{OK: false, Message: "Path is not a file: " + abs}, nil
	}
	if info.Size() > maxReadableSize {
		return automation.Result{OK: false, Message: "File too large to read: " + abs}, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return automation.Result{}, fmt.Errorf("read %s: %w", abs, err)
	}
	if !utf8.Valid(data) {
		return automation.Result{OK: true, Message: "Binary file content not displayable."}, nil
	}
	return automation.Result{OK: true, Message: string(data)}, nil
}

func (f *FileManager) OpenFile(ctx context.Context, path string) (automation.Result, error) {
	abs := f.loc.ResolvePath(path)
	if _, err := os.Stat(abs); err != nil {
		return automation.Result{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	if err := openWithDefaultApp(ctx, abs); err != nil {
		return automation.Result{}, err
	}
	return automation.Result{OK: true, Message: "Opened file: " + filepath.Base(abs)}, nil
}

func (f *FileManager) OpenFolder(ctx context.Context, path string) (automation.Result, error) {
	abs := f.loc.ResolvePath(path)
	info, err := os.Stat(abs)
	if err != nil {
		return automation.Result{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return automation.Result{OK: false, Message: "Path is not a directory: " + abs}, nil
	}
	if err := openWithDefaultApp(ctx, abs); err != nil {
		return automation.Result{}, err
	}
	return automation.Result{OK: true, Message: "Opened folder: " + filepath.Base(abs)}, nil
}

func (f *FileManager) CreateFolder(_ context.Context, path string) (automation.Result, error) {
	abs := f.loc.ResolvePath(path)
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return automation.Result{}, fmt.Errorf("create folder %s: %w", abs, err)
	}
	return automation.Result{OK: true, Message: "Created folder " + abs}, nil
}

func (f *FileManager) DeleteItem(_ context.Context, path string) (automation.Result, error) {
	abs := f.loc.ResolvePath(path)
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return automation.Result{OK: false, Message: "Item does not exist."}, nil
	}
	if err := os.RemoveAll(abs); err != nil {
		return automation.Result{}, fmt.Errorf("delete %s: %w", abs, err)
	}
	return automation.Result{OK: true, Message: "Deleted " + abs}, nil
}

func (f *FileManager) ListFiles(_ context.Context, path string) (automation.Result, error) {
	abs := f.loc.ResolvePath(path)
	if abs == "" {
		abs = "."
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return automation.Result{}, fmt.Errorf("list %s: %w", abs, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return automation.Result{OK: true, Message: "Empty directory: " + abs}, nil
	}
	return automation.Result{OK: true, Message: strings.Join(names, ", ")}, nil
}
