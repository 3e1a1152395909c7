package skills

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const macroFileName = "MACRO.md"

var errInvalidMacroYAML = errors.New("invalid macro YAML frontmatter")

// Macro is a user-authored automation recipe. The body text is appended to
// the planner prompt so the model can follow the described workflow when the
// keywords match.
type Macro struct {
	Name        string
	Description string
	Keywords    []string
	Body        string
}

type macroFrontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// LoadMacros reads every <dir>/<macro>/MACRO.md. A missing directory is not
// an error; macros are optional. Invalid YAML skips the one macro with a
// warning, duplicate names abort the load.
func LoadMacros(macroDir string) ([]Macro, error) {
	macroDir = strings.TrimSpace(macroDir)
	if macroDir == "" {
		return nil, nil
	}

	info, err := os.Stat(macroDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat macros dir %q: %w", macroDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("macros path is not a directory: %s", macroDir)
	}

	entries, err := os.ReadDir(macroDir)
	if err != nil {
		return nil, fmt.Errorf("read macros dir %q: %w", macroDir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	macros := make([]Macro, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		macroPath := filepath.Join(macroDir, entry.Name(), macroFileName)
		m, skip, parseErr := parseMacroFile(macroPath)
		if parseErr != nil {
			return nil, parseErr
		}
		if skip {
			continue
		}

		if prevPath, exists := seen[m.Name]; exists {
			return nil, fmt.Errorf("duplicate macro name %q in %s (already in %s)", m.Name, macroPath, prevPath)
		}
		seen[m.Name] = macroPath
		macros = append(macros, m)
	}

	return macros, nil
}

func parseMacroFile(path string) (Macro, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Macro{}, true, nil
		}
		return Macro{}, false, fmt.Errorf("read macro %q: %w", path, err)
	}

	meta, body, err := parseFrontmatter(content)
	if err != nil {
		if errors.Is(err, errInvalidMacroYAML) {
			log.Printf("[skills] warning: skip invalid YAML macro %s: %v", path, err)
			return Macro{}, true, nil
		}
		return Macro{}, false, fmt.Errorf("parse macro %q: %w", path, err)
	}
	if strings.TrimSpace(meta.Name) == "" {
		return Macro{}, false, fmt.Errorf("parse macro %q: missing name", path)
	}

	return Macro{
		Name:        strings.TrimSpace(meta.Name),
		Description: strings.TrimSpace(meta.Description),
		Keywords:    sanitizeKeywords(meta.Keywords),
		Body:        strings.TrimSpace(body),
	}, false, nil
}

func parseFrontmatter(content []byte) (macroFrontmatter, string, error) {
	text := strings.TrimPrefix(string(content), "\uFEFF")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return macroFrontmatter{}, "", errors.New("missing YAML frontmatter")
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return macroFrontmatter{}, "", errors.New("missing closing frontmatter separator")
	}

	frontmatter := strings.Join(lines[1:end], "\n")
	body := strings.Join(lines[end+1:], "\n")

	var meta macroFrontmatter
	if err := yaml.Unmarshal([]byte(frontmatter), &meta); err != nil {
		return macroFrontmatter{}, "", fmt.Errorf("%w: %v", errInvalidMacroYAML, err)
	}

	return meta, body, nil
}

func sanitizeKeywords(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// PromptAppendix renders the loaded macros as extra planner prompt material.
// Returns "" when there are no macros.
func PromptAppendix(macros []Macro) string {
	if len(macros) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\nUSER MACROS (follow these workflows when the request matches):\n")
	for _, m := range macros {
		fmt.Fprintf(&sb, "\nMacro %q", m.Name)
		if m.Description != "" {
			fmt.Fprintf(&sb, " - %s", m.Description)
		}
		if len(m.Keywords) > 0 {
			fmt.Fprintf(&sb, " (triggers: %s)", strings.Join(m.Keywords, ", "))
		}
		sb.WriteString("\n")
		if m.Body != "" {
			sb.WriteString(m.Body)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
