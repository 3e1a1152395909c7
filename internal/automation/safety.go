package automation

import (
	"fmt"
	"log"
	"strings"
)

// Guard sits between the planner and the OS and vetoes steps that could do
// damage. Rules run in order and the first hit decides; an unexpected panic
// inside a rule denies the step, never allows it.
type Guard struct{}

func NewGuard() *Guard { return &Guard{} }

var criticalPaths = []string{
	`C:\Windows`, `C:\Program Files`, `C:\Program Files (x86)`,
	"/bin", "/sbin", "/usr/bin", "/usr/sbin", "/etc",
}

// Validate checks a single step against the deny rules. The verdict reason is
// user-facing text; the router surfaces it verbatim.
func (g *Guard) Validate(tool Tool, params map[string]any) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[safety] validation panic, denying step: %v", r)
			verdict = Verdict{Allowed: false, Reason: fmt.Sprintf("safety validation error: %v", r)}
		}
	}()

	action := strParamOr(params, "action", "")
	path := strParamOr(params, "path", "")

	if tool == ToolFileManager {
		// "delete", "delete_item" and "remove" all count; the planner's
		// catalog names the action delete_item.
		if strings.HasPrefix(action, "delete") || action == "remove" {
			return Verdict{Allowed: false, Reason: fmt.Sprintf("deleting files requires explicit confirmation (action %q on %q)", action, path)}
		}
		for _, critical := range criticalPaths {
			if path != "" && strings.HasPrefix(path, critical) {
				return Verdict{Allowed: false, Reason: "cannot modify system critical path: " + critical}
			}
		}
	}

	if tool == ToolSystemControl {
		command := strings.ToLower(strParamOr(params, "command", ""))
		for _, kw := range []string{"shutdown", "restart", "format"} {
			if strings.Contains(command, kw) {
				return Verdict{Allowed: false, Reason: "system power actions require confirmation"}
			}
		}
	}

	if tool == ToolBrowserAgent || tool == ToolInputController {
		text := strings.ToLower(fmt.Sprintf("%v", params))
		for _, kw := range []string{"credit card", "cvv", "password", "social security"} {
			if strings.Contains(text, kw) {
				return Verdict{Allowed: false, Reason: "sensitive data detected; refusing to type passwords or restricted info"}
			}
		}
		if strings.Contains(text, "buy") || strings.Contains(text, "checkout") {
			return Verdict{Allowed: false, Reason: "this looks like a purchase; please confirm the action first"}
		}
	}

	return Verdict{Allowed: true, Reason: "safe"}
}

func strParamOr(params map[string]any, key, fallback string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}
