package tools

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/VanshArora01/anay/internal/automation"
)

// InputController synthesizes keyboard and mouse input through the platform
// tools: xdotool on Linux, osascript on macOS, SendKeys via powershell on
// Windows. Successful actions return no message so they stay out of the
// summary.
type InputController struct{}

func NewInputController() *InputController {
	return &InputController{}
}

func (c *InputController) TypeText(ctx context.Context, text string) (automation.Result, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "osascript", "-e",
			fmt.Sprintf(`tell application "System Events" to keystroke %q`, text))
	case "windows":
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
			fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%q)`, text))
	default:
		cmd = exec.CommandContext(ctx, "xdotool", "type", "--delay", "50", text)
	}
	if err := cmd.Run(); err != nil {
		return automation.Result{}, fmt.Errorf("type text: %w", err)
	}
	return automation.Result{OK: true}, nil
}

// xdotool and osascript disagree on a few key names.
var keyNames = map[string]map[string]string{
	"enter":     {"linux": "Return", "darwin": "return"},
	"esc":       {"linux": "Escape", "darwin": "escape"},
	"tab":       {"linux": "Tab", "darwin": "tab"},
	"space":     {"linux": "space", "darwin": "space"},
	"backspace": {"linux": "BackSpace", "darwin": "delete"},
}

func platformKey(key string) string {
	if byOS, ok := keyNames[strings.ToLower(key)]; ok {
		if k, ok := byOS[runtime.GOOS]; ok {
			return k
		}
	}
	return key
}

func (c *InputController) PressKey(ctx context.Context, key string) (automation.Result, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "osascript", "-e",
			fmt.Sprintf(`tell application "System Events" to key code (key code of %q)`, platformKey(key)))
	case "windows":
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
			fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait("{%s}")`, strings.ToUpper(key)))
	default:
		cmd = exec.CommandContext(ctx, "xdotool", "key", platformKey(key))
	}
	if err := cmd.Run(); err != nil {
		return automation.Result{}, fmt.Errorf("press key %s: %w", key, err)
	}
	return automation.Result{OK: true}, nil
}

func (c *InputController) Hotkey(ctx context.Context, keys []string) (automation.Result, error) {
	if len(keys) == 0 {
		return automation.Result{OK: false, Message: "No keys given for hotkey"}, nil
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "osascript", "-e", darwinHotkeyScript(keys))
	case "windows":
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
			fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%q)`, windowsHotkeyChord(keys)))
	default:
		cmd = exec.CommandContext(ctx, "xdotool", "key", strings.Join(keys, "+"))
	}
	if err := cmd.Run(); err != nil {
		return automation.Result{}, fmt.Errorf("hotkey %s: %w", strings.Join(keys, "+"), err)
	}
	return automation.Result{OK: true}, nil
}

func darwinHotkeyScript(keys []string) string {
	modMap := map[string]string{
		"ctrl": "control down", "alt": "option down",
		"shift": "shift down", "win": "command down", "cmd": "command down",
	}
	var mods []string
	key := keys[len(keys)-1]
	for _, k := range keys[:len(keys)-1] {
		if m, ok := modMap[strings.ToLower(k)]; ok {
			mods = append(mods, m)
		}
	}
	if len(mods) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke %q`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke %q using {%s}`, key, strings.Join(mods, ", "))
}

func windowsHotkeyChord(keys []string) string {
	modMap := map[string]string{"ctrl": "^", "alt": "%", "shift": "+"}
	var sb strings.Builder
	for _, k := range keys {
		if m, ok := modMap[strings.ToLower(k)]; ok {
			sb.WriteString(m)
		} else {
			sb.WriteString(k)
		}
	}
	return sb.String()
}

func (c *InputController) ClickMouse(ctx context.Context, x, y int, hasPos bool, button string, clicks int) (automation.Result, error) {
	if clicks <= 0 {
		clicks = 1
	}
	btn := "1"
	if button == "right" {
		btn = "3"
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		// cliclick is the conventional helper for scripted clicks on macOS.
		args := []string{fmt.Sprintf("c:%d,%d", x, y)}
		if !hasPos {
			args = []string{"c:."}
		}
		cmd = exec.CommandContext(ctx, "cliclick", args...)
	case "windows":
		script := `Add-Type -AssemblyName System.Windows.Forms; `
		if hasPos {
			script += fmt.Sprintf(`[System.Windows.Forms.Cursor]::Position = New-Object System.Drawing.Point(%d, %d); `, x, y)
		}
		script += `$sig='[DllImport("user32.dll")] public static extern void mouse_event(int f,int x,int y,int d,int e);'; $m=Add-Type -MemberDefinition $sig -Name M -PassThru; $m::mouse_event(2,0,0,0,0); $m::mouse_event(4,0,0,0,0)`
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script)
	default:
		if hasPos {
			cmd = exec.CommandContext(ctx, "xdotool", "mousemove", strconv.Itoa(x), strconv.Itoa(y), "click", "--repeat", strconv.Itoa(clicks), btn)
		} else {
			cmd = exec.CommandContext(ctx, "xdotool", "click", "--repeat", strconv.Itoa(clicks), btn)
		}
	}
	if err := cmd.Run(); err != nil {
		return automation.Result{}, fmt.Errorf("click mouse: %w", err)
	}
	return automation.Result{OK: true}, nil
}

func (c *InputController) Scroll(ctx context.Context, clicks int) (automation.Result, error) {
	if clicks == 0 {
		return automation.Result{OK: true}, nil
	}
	// Positive scrolls up, negative down.
	btn := "4"
	count := clicks
	if clicks < 0 {
		btn = "5"
		count = -clicks
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		dir := "+" + strconv.Itoa(count)
		if clicks < 0 {
			dir = "-" + strconv.Itoa(count)
		}
		cmd = exec.CommandContext(ctx, "cliclick", "w:"+dir)
	case "windows":
		delta := 120 * clicks
		script := fmt.Sprintf(`$sig='[DllImport("user32.dll")] public static extern void mouse_event(int f,int x,int y,int d,int e);'; $m=Add-Type -MemberDefinition $sig -Name M -PassThru; $m::mouse_event(0x0800,0,0,%d,0)`, delta)
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script)
	default:
		cmd = exec.CommandContext(ctx, "xdotool", "click", "--repeat", strconv.Itoa(count), btn)
	}
	if err := cmd.Run(); err != nil {
		return automation.Result{}, fmt.Errorf("scroll: %w", err)
	}
	return automation.Result{OK: true}, nil
}

// Wait pauses between steps so freshly launched UIs can take focus. It honors
// context cancellation.
func (c *InputController) Wait(ctx context.Context, seconds float64) (automation.Result, error) {
	if seconds <= 0 {
		return automation.Result{OK: true}, nil
	}
	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return automation.Result{OK: true}, nil
	case <-ctx.Done():
		return automation.Result{}, ctx.Err()
	}
}

func (c *InputController) MediaPlayPause(ctx context.Context) (automation.Result, error) {
	return c.mediaKey(ctx, "XF86AudioPlay", "16")
}

func (c *InputController) MediaNext(ctx context.Context) (automation.Result, error) {
	return c.mediaKey(ctx, "XF86AudioNext", "17")
}

func (c *InputController) VolumeUp(ctx context.Context) (automation.Result, error) {
	return c.mediaKey(ctx, "XF86AudioRaiseVolume", "0")
}

func (c *InputController) mediaKey(ctx context.Context, x11Key, darwinKeyCode string) (automation.Result, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "osascript", "-e",
			fmt.Sprintf(`tell application "System Events" to key code %s`, darwinKeyCode))
	case "windows":
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
			`(New-Object -ComObject WScript.Shell).SendKeys([char]179)`)
	default:
		cmd = exec.CommandContext(ctx, "xdotool", "key", x11Key)
	}
	if err := cmd.Run(); err != nil {
		return automation.Result{}, fmt.Errorf("media key: %w", err)
	}
	return automation.Result{OK: true}, nil
}
