package automation

// Tool names the four facades a plan step may target. The set is closed: the
// dispatcher rejects anything else.
type Tool string

const (
	ToolSystemControl   Tool = "system_control"
	ToolFileManager     Tool = "file_manager"
	ToolBrowserAgent    Tool = "browser_agent"
	ToolInputController Tool = "input_controller"
)

// Step is one tool invocation inside a plan. Steps are immutable once
// produced; the planner and the command compiler both emit this shape.
type Step struct {
	Tool   Tool           `json:"tool"`
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// Plan is an ordered sequence of steps. The empty plan is a valid terminal
// value meaning "this utterance is conversation, not an action".
type Plan struct {
	Steps []Step `json:"steps"`
}

func (p Plan) Empty() bool { return len(p.Steps) == 0 }

// Result is the normalized outcome of one executed step. A successful step
// with an empty message contributes nothing to the final summary.
type Result struct {
	OK      bool
	Message string
}

// Verdict is the safety gate's answer for one step.
type Verdict struct {
	Allowed bool
	Reason  string
}

// CommandKind tags the rule extractor's output variants.
type CommandKind string

const (
	CmdLaunchApp        CommandKind = "launch_app"
	CmdCreateFile       CommandKind = "create_file"
	CmdReadFile         CommandKind = "read_file"
	CmdOpenFile         CommandKind = "open_file"
	CmdOpenFolder       CommandKind = "open_folder"
	CmdCaptureScreen    CommandKind = "capture_screen"
	CmdAnalyzeScreen    CommandKind = "analyze_screen"
	CmdActiveWindow     CommandKind = "get_active_window"
	CmdPlaySpotify      CommandKind = "play_spotify"
	CmdSystemInfo       CommandKind = "system_info"
	CmdBatteryStatus    CommandKind = "battery_status"
	CmdRunningProcesses CommandKind = "running_processes"
	CmdTypeText         CommandKind = "type_text"
	CmdPressKey         CommandKind = "press_key"
	CmdHotkey           CommandKind = "hotkey"
	CmdClickMouse       CommandKind = "click_mouse"
	CmdScroll           CommandKind = "scroll"
	CmdOpenBrowser      CommandKind = "open_browser"
)

// Command is a single structured action produced by the rule-based extractor.
// Only the fields relevant to its Kind are set.
type Command struct {
	Kind    CommandKind
	Name    string   // launch_app
	Path    string   // file and folder operations
	Content string   // create_file
	URL     string   // open_browser
	Query   string   // play_spotify
	Text    string   // type_text
	Key     string   // press_key
	Keys    []string // hotkey
	X, Y    int      // click_mouse
	HasPos  bool     // click_mouse: explicit coordinates present
	Clicks  int      // scroll: signed click count
}
