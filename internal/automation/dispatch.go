package automation

import (
	"context"
	"fmt"
)

// Facade interfaces. The concrete implementations live in internal/tools;
// they are injected so the planning pipeline can be tested against fakes.

type SystemControl interface {
	LaunchApp(ctx context.Context, appName string) (Result, error)
	CloseApp(ctx context.Context, appName string) (Result, error)
	OpenBrowser(ctx context.Context, url string) (Result, error)
	PlaySpotify(ctx context.Context, query string) (Result, error)
	CaptureScreen(ctx context.Context) (Result, error)
	AnalyzeScreen(ctx context.Context) (Result, error)
	ActiveWindow(ctx context.Context) (Result, error)
	SystemInfo(ctx context.Context) (Result, error)
	BatteryStatus(ctx context.Context) (Result, error)
	RunningProcesses(ctx context.Context) (Result, error)
}

type FileManager interface {
	WriteFile(ctx context.Context, path, content string) (Result, error)
	AppendFile(ctx context.Context, path, content string) (Result, error)
	ReadFile(ctx context.Context, path string) (Result, error)
	OpenFile(ctx context.Context, path string) (Result, error)
	OpenFolder(ctx context.Context, path string) (Result, error)
	CreateFolder(ctx context.Context, path string) (Result, error)
	DeleteItem(ctx context.Context, path string) (Result, error)
	ListFiles(ctx context.Context, path string) (Result, error)
}

type BrowserAgent interface {
	Open(ctx context.Context, url string) (Result, error)
	Search(ctx context.Context, query string) (Result, error)
}

type InputController interface {
	TypeText(ctx context.Context, text string) (Result, error)
	PressKey(ctx context.Context, key string) (Result, error)
	Hotkey(ctx context.Context, keys []string) (Result, error)
	ClickMouse(ctx context.Context, x, y int, hasPos bool, button string, clicks int) (Result, error)
	Scroll(ctx context.Context, clicks int) (Result, error)
	Wait(ctx context.Context, seconds float64) (Result, error)
	MediaPlayPause(ctx context.Context) (Result, error)
	MediaNext(ctx context.Context) (Result, error)
	VolumeUp(ctx context.Context) (Result, error)
}

type stepFunc func(ctx context.Context, params map[string]any) (Result, error)

// Dispatcher routes validated plan steps to facade methods through an
// explicit table. Unknown tools and actions are hard errors: the planner's
// output is untrusted, so nothing falls through to a default.
type Dispatcher struct {
	table map[Tool]map[string]stepFunc
}

func NewDispatcher(sys SystemControl, files FileManager, browser BrowserAgent, input InputController) *Dispatcher {
	d := &Dispatcher{table: map[Tool]map[string]stepFunc{}}

	d.table[ToolSystemControl] = map[string]stepFunc{
		"launch_app": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.LaunchApp(ctx, strParam(p, "app_name", "name"))
		},
		"close_app": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.CloseApp(ctx, strParam(p, "app_name", "name"))
		},
		"open_browser": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.OpenBrowser(ctx, strParam(p, "url"))
		},
		"play_spotify": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.PlaySpotify(ctx, strParam(p, "query"))
		},
		"capture_screen": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.CaptureScreen(ctx)
		},
		"analyze_screen": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.AnalyzeScreen(ctx)
		},
		"get_active_window": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.ActiveWindow(ctx)
		},
		"system_info": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.SystemInfo(ctx)
		},
		"battery_status": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.BatteryStatus(ctx)
		},
		"running_processes": func(ctx context.Context, p map[string]any) (Result, error) {
			return sys.RunningProcesses(ctx)
		},
	}

	d.table[ToolFileManager] = map[string]stepFunc{
		"write_file": func(ctx context.Context, p map[string]any) (Result, error) {
			return files.WriteFile(ctx, strParam(p, "path"), strParam(p, "content"))
		},
		"append_file": func(ctx context.Context, p map[string]any) (Result, error) {
			return files.AppendFile(ctx, strParam(p, "path"), strParam(p, "content"))
		},
		"read_file": func(ctx context.Context, p map[string]any) (Result, error) {
			return files.ReadFile(ctx, strParam(p, "path"))
		},
		"open_file": func(ctx context.Context, p map[string]any) (Result, error) {
			return files.OpenFile(ctx, strParam(p, "path"))
		},
		"open_folder": func(ctx context.Context, p map[string]any) (Result, error) {
			return files.OpenFolder(ctx, strParam(p, "path"))
		},
		"create_folder": func(ctx context.Context, p map[string]any) (Result, error) {
			return files.CreateFolder(ctx, strParam(p, "path"))
		},
		"delete_item": func(ctx context.Context, p map[string]any) (Result, error) {
			return files.DeleteItem(ctx, strParam(p, "path"))
		},
		"list_files": func(ctx context.Context, p map[string]any) (Result, error) {
			return files.ListFiles(ctx, strParam(p, "path"))
		},
	}

	d.table[ToolBrowserAgent] = map[string]stepFunc{
		"open": func(ctx context.Context, p map[string]any) (Result, error) {
			return browser.Open(ctx, strParam(p, "url"))
		},
		"search": func(ctx context.Context, p map[string]any) (Result, error) {
			return browser.Search(ctx, strParam(p, "query"))
		},
	}

	d.table[ToolInputController] = map[string]stepFunc{
		"type_text": func(ctx context.Context, p map[string]any) (Result, error) {
			return input.TypeText(ctx, strParam(p, "text"))
		},
		"press_key": func(ctx context.Context, p map[string]any) (Result, error) {
			return input.PressKey(ctx, strParam(p, "key"))
		},
		"hotkey": func(ctx context.Context, p map[string]any) (Result, error) {
			return input.Hotkey(ctx, keysParam(p, "keys"))
		},
		"click_mouse": func(ctx context.Context, p map[string]any) (Result, error) {
			x, okX := intParam(p, "x")
			y, okY := intParam(p, "y")
			clicks, okC := intParam(p, "clicks")
			if !okC || clicks == 0 {
				clicks = 1
			}
			button := strParam(p, "button")
			if button == "" {
				button = "left"
			}
			return input.ClickMouse(ctx, x, y, okX && okY, button, clicks)
		},
		"scroll": func(ctx context.Context, p map[string]any) (Result, error) {
			clicks, ok := intParam(p, "clicks")
			if !ok {
				clicks = 3
			}
			return input.Scroll(ctx, clicks)
		},
		"wait": func(ctx context.Context, p map[string]any) (Result, error) {
			return input.Wait(ctx, floatParam(p, "seconds"))
		},
		"media_play_pause": func(ctx context.Context, p map[string]any) (Result, error) {
			return input.MediaPlayPause(ctx)
		},
		"media_next": func(ctx context.Context, p map[string]any) (Result, error) {
			return input.MediaNext(ctx)
		},
		"volume_up": func(ctx context.Context, p map[string]any) (Result, error) {
			return input.VolumeUp(ctx)
		},
	}

	return d
}

// Run executes one step. A Result with OK=false is promoted to an error so
// the execution loop aborts the remaining steps.
func (d *Dispatcher) Run(ctx context.Context, step Step) (Result, error) {
	actions, ok := d.table[step.Tool]
	if !ok {
		return Result{}, fmt.Errorf("unknown tool: %s", step.Tool)
	}
	fn, ok := actions[step.Action]
	if !ok {
		return Result{}, fmt.Errorf("unknown action %q in %s", step.Action, step.Tool)
	}
	res, err := fn(ctx, step.Params)
	if err != nil {
		return Result{}, err
	}
	if !res.OK {
		return Result{}, fmt.Errorf("%s", res.Message)
	}
	return res, nil
}

// strParam returns the first present string value among the given keys.
func strParam(params map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := params[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case float64: // JSON numbers decode as float64
		return int(v), true
	}
	return 0, false
}

func floatParam(params map[string]any, key string) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// keysParam accepts both []string (built in-process) and []any (decoded from
// model JSON).
func keysParam(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				keys = append(keys, s)
			}
		}
		return keys
	}
	return nil
}
