package automation

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeGenerator struct {
	reply string
	err   error
	// last prompt seen, for assertions on context injection
	prompt string
}

func (f *fakeGenerator) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestParsePlan_StripsFences(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"steps\": [{\"tool\": \"system_control\", \"action\": \"launch_app\", \"params\": {\"app_name\": \"chrome\"}}]}\n```"
	plan, err := ParsePlan(raw)
	if err != nil {
		t.Fatalf("ParsePlan error: %v", err)
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(plan.Steps))
	}
	if plan.Steps[0].Tool != ToolSystemControl || plan.Steps[0].Action != "launch_app" {
		t.Errorf("step = %+v", plan.Steps[0])
	}
}

func TestParsePlan_NoJSON(t *testing.T) {
	if _, err := ParsePlan("sorry, I can't help with that"); err == nil {
		t.Error("expected error for output without JSON")
	}
}

func TestPlanner_NilGeneratorReturnsEmpty(t *testing.T) {
	p := NewPlanner(nil, "/d", "/doc")
	if plan := p.Plan(context.Background(), "create hello.txt", ExecutionContext{}); !plan.Empty() {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}

func TestPlanner_GenerationErrorReturnsEmpty(t *testing.T) {
	p := NewPlanner(&fakeGenerator{err: fmt.Errorf("boom")}, "/d", "/doc")
	if plan := p.Plan(context.Background(), "create hello.txt", ExecutionContext{}); !plan.Empty() {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}

func TestPlanner_MalformedOutputReturnsEmpty(t *testing.T) {
	p := NewPlanner(&fakeGenerator{reply: "no json here"}, "/d", "/doc")
	if plan := p.Plan(context.Background(), "create hello.txt", ExecutionContext{}); !plan.Empty() {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}

func TestPlanner_EmptyStepsForConversation(t *testing.T) {
	p := NewPlanner(&fakeGenerator{reply: `{ "steps": [] }`}, "/d", "/doc")
	if plan := p.Plan(context.Background(), "tell me a joke", ExecutionContext{}); !plan.Empty() {
		t.Errorf("expected empty plan for conversational input, got %+v", plan)
	}
}

func TestPlanner_InjectsContextAndPaths(t *testing.T) {
	gen := &fakeGenerator{reply: `{"steps": []}`}
	p := NewPlanner(gen, "/home/v/Desktop", "/home/v/Documents")
	p.Plan(context.Background(), "do something", ExecutionContext{LastOpenedApp: "chrome"})

	for _, want := range []string{"/home/v/Desktop", "/home/v/Documents", "last_opened_app", "chrome", "do something"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestCompileCommand_CoversKinds(t *testing.T) {
	tests := []struct {
		cmd    Command
		tool   Tool
		action string
	}{
		{Command{Kind: CmdLaunchApp, Name: "chrome"}, ToolSystemControl, "launch_app"},
		{Command{Kind: CmdCreateFile, Path: "desktop/a.txt", Content: "hi"}, ToolFileManager, "write_file"},
		{Command{Kind: CmdOpenBrowser, URL: "https://example.com"}, ToolSystemControl, "open_browser"},
		{Command{Kind: CmdHotkey, Keys: []string{"ctrl", "k"}}, ToolInputController, "hotkey"},
		{Command{Kind: CmdBatteryStatus}, ToolSystemControl, "battery_status"},
	}
	for _, tt := range tests {
		plan := CompileCommand(tt.cmd)
		if len(plan.Steps) != 1 {
			t.Errorf("%s: steps = %d", tt.cmd.Kind, len(plan.Steps))
			continue
		}
		s := plan.Steps[0]
		if s.Tool != tt.tool || s.Action != tt.action {
			t.Errorf("%s: got %s/%s, want %s/%s", tt.cmd.Kind, s.Tool, s.Action, tt.tool, tt.action)
		}
	}
}

func TestCompileCommand_UnknownKindIsEmpty(t *testing.T) {
	if plan := CompileCommand(Command{}); !plan.Empty() {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}
