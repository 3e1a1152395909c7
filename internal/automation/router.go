package automation

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Router is the full interpretation pipeline: classify the utterance, expand
// vague references, extract or plan, gate each step, execute, summarize, and
// persist what happened for the next turn.
type Router struct {
	store      *ContextStore
	extractor  *Extractor
	planner    *Planner
	guard      *Guard
	dispatcher *Dispatcher
}

func NewRouter(store *ContextStore, extractor *Extractor, planner *Planner, guard *Guard, dispatcher *Dispatcher) *Router {
	return &Router{
		store:      store,
		extractor:  extractor,
		planner:    planner,
		guard:      guard,
		dispatcher: dispatcher,
	}
}

// taskVerbs are the utterance prefixes that strongly suggest a command.
// Anything else goes straight to the conversational brain without touching
// the planner.
var taskVerbs = []string{
	"open", "launch", "start", "close", "shut down", "restart",
	"type", "click", "scroll", "press", "hit",
	"search", "browse", "go to",
	"create", "make", "delete", "read", "write", "folder",
	"play", "take", "capture", "show", "what",
}

// Route interprets one utterance. The first return value reports whether the
// utterance was handled as a command; when it is false the caller should
// produce a conversational reply instead.
func (r *Router) Route(ctx context.Context, utterance string) (bool, string) {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	likelyCommand := false
	for _, verb := range taskVerbs {
		if strings.HasPrefix(lower, verb) {
			likelyCommand = true
			break
		}
	}
	if !likelyCommand {
		return false, ""
	}

	ec := r.store.Get()
	refined := ExpandReferences(utterance, ec)
	if refined != utterance {
		log.Printf("[router] refined: %q -> %q", utterance, refined)
	}

	// Fast path: the rule extractor needs no model round-trip. Plans from
	// either path run through the same gate and dispatcher.
	var plan Plan
	if cmd, ok := r.extractor.Extract(refined); ok {
		plan = CompileCommand(cmd)
	} else {
		plan = r.planner.Plan(ctx, refined, ec)
	}

	if plan.Empty() {
		// A verb prefix but no actionable plan: hand back to conversation.
		return false, ""
	}

	var results []string
	for _, step := range plan.Steps {
		params := make(map[string]any, len(step.Params)+1)
		for k, v := range step.Params {
			params[k] = v
		}
		params["action"] = step.Action

		verdict := r.guard.Validate(step.Tool, params)
		if !verdict.Allowed {
			log.Printf("[router] safety block on %s/%s: %s", step.Tool, step.Action, verdict.Reason)
			return true, "I couldn't complete the task because: " + verdict.Reason
		}

		res, err := r.dispatcher.Run(ctx, step)
		if err != nil {
			log.Printf("[router] execution error on %s: %v", step.Action, err)
			return true, fmt.Sprintf("Error executing step %s: %v", step.Action, err)
		}
		if res.Message != "" {
			results = append(results, res.Message)
		}

		r.recordContext(step)
	}

	summary := "Done."
	if len(results) > 0 {
		summary = strings.Join(results, " and ")
	}
	r.store.Update(ExecutionContext{LastTaskSummary: summary})
	return true, summary
}

// recordContext persists the side effects a step implies so later turns can
// resolve "it" and "that app".
func (r *Router) recordContext(step Step) {
	path := strParam(step.Params, "path")
	switch step.Action {
	case "write_file":
		if path != "" {
			r.store.Update(ExecutionContext{LastCreatedFile: path, LastModifiedFile: path})
		}
	case "append_file":
		if path != "" {
			r.store.Update(ExecutionContext{LastModifiedFile: path})
		}
	case "open_file", "read_file":
		if path != "" {
			r.store.Update(ExecutionContext{LastOpenedFile: path})
		}
	case "launch_app":
		if app := strParam(step.Params, "app_name", "name"); app != "" {
			r.store.Update(ExecutionContext{LastOpenedApp: app})
		}
	case "create_folder":
		if path != "" {
			r.store.Update(ExecutionContext{ActiveProjectDir: path})
		}
	}
}
