package toolchain

import "time"

type Trigger string

const (
	TriggerBuildStart Trigger = "build-start"
	TriggerFileChange Trigger = "file-change"
)

// Request is one intent to run the toolchain. Path is set only for
// file-change triggers.
type Request struct {
	Trigger Trigger
	Path    string
}

// Outcome is the terminal result of a single toolchain run. A spawn failure
// is reported through the Invoke error and leaves a synthetic exit code of
// -1 on the outcome.
type Outcome struct {
	Trigger    Trigger
	Path       string
	ExitCode   int
	StartedAt  time.Time
	FinishedAt time.Time
	DurationMs int64
}

func (o Outcome) Succeeded() bool {
	return o.ExitCode == 0
}
