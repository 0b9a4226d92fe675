// Package report records per-file outcomes of a pipeline stage. A Batch
// never carries a stage-fatal error; those are returned separately.
package report

import (
	"go.uber.org/zap"
)

// Status is the result of processing one file.
type Status int

const (
	Success Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome describes what happened to one file.
type Outcome struct {
	Path        string
	Destination string // set by stages that write somewhere else
	Status      Status
	Reason      string // for Skipped
	Err         error  // for Failed
}

// Batch collects the outcomes of one stage invocation in input order.
type Batch struct {
	Stage    string
	Outcomes []Outcome
}

// NewBatch returns an empty batch for the named stage.
func NewBatch(stage string) *Batch {
	return &Batch{Stage: stage}
}

func (b *Batch) Succeed(path, dest string) {
	b.Outcomes = append(b.Outcomes, Outcome{Path: path, Destination: dest, Status: Success})
}

func (b *Batch) Skip(path, reason string) {
	b.Outcomes = append(b.Outcomes, Outcome{Path: path, Status: Skipped, Reason: reason})
}

func (b *Batch) Fail(path, dest string, err error) {
	b.Outcomes = append(b.Outcomes, Outcome{Path: path, Destination: dest, Status: Failed, Err: err})
}

// Count returns how many outcomes have status s.
func (b *Batch) Count(s Status) int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failures returns the failed outcomes.
func (b *Batch) Failures() []Outcome {
	var out []Outcome
	for _, o := range b.Outcomes {
		if o.Status == Failed {
			out = append(out, o)
		}
	}
	return out
}

// HasFailures reports whether any file failed.
func (b *Batch) HasFailures() bool {
	return b.Count(Failed) > 0
}

// Fields summarizes the batch for structured logging.
func (b *Batch) Fields() []zap.Field {
	return []zap.Field{
		zap.String("stage", b.Stage),
		zap.Int("succeeded", b.Count(Success)),
		zap.Int("skipped", b.Count(Skipped)),
		zap.Int("failed", b.Count(Failed)),
	}
}
