package cron

import (
	"time"

	"github.com/google/uuid"
)

// Schedule describes when a job fires. Exactly one of the kind-specific
// fields is meaningful: Expr for "cron", EveryMs for "every", AtMs for "at".
type Schedule struct {
	Kind    string `json:"kind"` // "cron" | "every" | "at"
	Expr    string `json:"expr,omitempty"`
	EveryMs int64  `json:"every_ms,omitempty"`
	AtMs    int64  `json:"at_ms,omitempty"`
}

// Payload is what a firing job feeds back into the assistant: an utterance
// that runs through the normal interpretation pipeline, optionally delivered
// to a channel recipient.
type Payload struct {
	Utterance string `json:"utterance"`
	Deliver   bool   `json:"deliver,omitempty"`
	Channel   string `json:"channel,omitempty"`
	To        string `json:"to,omitempty"`
}

type JobState struct {
	LastRunAtMs int64  `json:"last_run_at_ms,omitempty"`
	LastStatus  string `json:"last_status,omitempty"` // "ok" | "error"
	LastError   string `json:"last_error,omitempty"`
}

type Job struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	DeleteAfterRun bool     `json:"delete_after_run,omitempty"`
	Schedule       Schedule `json:"schedule"`
	Payload        Payload  `json:"payload"`
	State          JobState `json:"state"`
	CreatedAtMs    int64    `json:"created_at_ms"`
}

func NewJob(name string, schedule Schedule, payload Payload) Job {
	return Job{
		ID:          uuid.NewString(),
		Name:        name,
		Enabled:     true,
		Schedule:    schedule,
		Payload:     payload,
		CreatedAtMs: time.Now().UnixMilli(),
	}
}
