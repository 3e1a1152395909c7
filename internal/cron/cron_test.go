package cron

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewJob(t *testing.T) {
	job := NewJob("morning", Schedule{Kind: "cron", Expr: "0 0 9 * * *"}, Payload{Utterance: "open chrome"})
	if job.ID == "" {
		t.Error("job ID should not be empty")
	}
	if job.Name != "morning" {
		t.Errorf("name = %q, want morning", job.Name)
	}
	if !job.Enabled {
		t.Error("job should be enabled by default")
	}
	if job.Payload.Utterance != "open chrome" {
		t.Errorf("utterance = %q, want open chrome", job.Payload.Utterance)
	}
}

func TestService_AddAndListJobs(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "jobs.json")
	s := NewService(storePath)

	job, err := s.AddJob("job1", Schedule{Kind: "every", EveryMs: 60000}, Payload{Utterance: "take a screenshot"})
	if err != nil {
		t.Fatalf("AddJob error: %v", err)
	}
	if job.Name != "job1" {
		t.Errorf("name = %q, want job1", job.Name)
	}

	jobs := s.ListJobs()
	if len(jobs) != 1 {
		t.Fatalf("len(jobs) = %d, want 1", len(jobs))
	}

	// Verify persistence
	data, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	var stored []Job
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(stored) != 1 || stored[0].Payload.Utterance != "take a screenshot" {
		t.Errorf("stored jobs = %+v", stored)
	}
}

func TestService_RemoveJob(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "jobs.json"))

	job, _ := s.AddJob("rm-test", Schedule{Kind: "every", EveryMs: 1000}, Payload{Utterance: "x"})

	if !s.RemoveJob(job.ID) {
		t.Error("RemoveJob returned false")
	}
	if len(s.ListJobs()) != 0 {
		t.Error("job not removed")
	}
	if s.RemoveJob("nonexistent") {
		t.Error("RemoveJob should return false for nonexistent")
	}
}

func TestService_EnableJob(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "jobs.json"))

	job, _ := s.AddJob("toggle", Schedule{Kind: "every", EveryMs: 1000}, Payload{Utterance: "x"})

	updated, err := s.EnableJob(job.ID, false)
	if err != nil {
		t.Fatalf("EnableJob error: %v", err)
	}
	if updated.Enabled {
		t.Error("job should be disabled")
	}

	updated, err = s.EnableJob(job.ID, true)
	if err != nil {
		t.Fatalf("EnableJob error: %v", err)
	}
	if !updated.Enabled {
		t.Error("job should be enabled")
	}

	if _, err = s.EnableJob("nonexistent", true); err == nil {
		t.Error("expected error for nonexistent job")
	}
}

func TestService_StartStop(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "jobs.json"))

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	cancel()
	s.Stop()
}

func TestService_EveryJobExecutesUtterance(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "jobs.json"))

	var got atomic.Value
	var count atomic.Int32
	s.OnJob = func(job Job) (string, error) {
		got.Store(job.Payload.Utterance)
		count.Add(1)
		return "Done.", nil
	}

	job := NewJob("tick", Schedule{Kind: "every", EveryMs: 100}, Payload{Utterance: "system info"})
	job.State.LastRunAtMs = time.Now().UnixMilli() - 200
	s.jobs = append(s.jobs, job)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for count.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if count.Load() == 0 {
		t.Fatal("expected at least one execution")
	}
	if got.Load() != "system info" {
		t.Errorf("utterance = %v", got.Load())
	}

	jobs := s.ListJobs()
	if len(jobs) != 1 || jobs[0].State.LastStatus != "ok" {
		t.Errorf("jobs = %+v, want last status ok", jobs)
	}
}

func TestService_AtJobRunsOnceAndCanDelete(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "jobs.json"))

	var count atomic.Int32
	s.OnJob = func(job Job) (string, error) {
		count.Add(1)
		return "ok", nil
	}

	job := NewJob("once", Schedule{Kind: "at", AtMs: time.Now().UnixMilli() - 100}, Payload{Utterance: "x"})
	job.DeleteAfterRun = true
	s.jobs = append(s.jobs, job)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for count.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if count.Load() == 0 {
		t.Fatal("expected execution of due at-job")
	}

	// DeleteAfterRun drops the job from the store.
	deadline = time.Now().Add(2 * time.Second)
	for len(s.ListJobs()) != 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if n := len(s.ListJobs()); n != 0 {
		t.Errorf("jobs remaining = %d, want 0", n)
	}
}

func TestService_LoadFromDisk(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "jobs.json")

	first := NewService(storePath)
	if _, err := first.AddJob("persisted", Schedule{Kind: "every", EveryMs: 60000}, Payload{Utterance: "battery status"}); err != nil {
		t.Fatal(err)
	}

	second := NewService(storePath)
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer second.Stop()

	jobs := second.ListJobs()
	if len(jobs) != 1 || jobs[0].Name != "persisted" {
		t.Errorf("jobs = %+v", jobs)
	}
}
