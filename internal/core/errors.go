package core

import (
	"errors"
	"fmt"
	"time"
)

// StageError reports a pipeline stage that could not complete.
type StageError struct {
	Stage     string
	Cause     error
	Timestamp time.Time
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

var (
	// ErrStructureGeneration aborts a run: no later stage can work without a structure.
	ErrStructureGeneration = errors.New("failed to generate story structure")
	ErrStoryDirectory      = errors.New("creating story directory")
	ErrMetadataWrite       = errors.New("writing metadata")
	ErrStageSkipped        = errors.New("stage produced no output")
	ErrArtifactWrite       = errors.New("writing artifact")
)

// NewStageError creates a new StageError with timestamp
func NewStageError(stage string, cause error) *StageError {
	return &StageError{
		Stage:     stage,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// IsFatal reports whether err must stop the run. Skipped stages and failed
// artifact writes are recorded and the run goes on.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrStructureGeneration) ||
		errors.Is(err, ErrStoryDirectory) ||
		errors.Is(err, ErrMetadataWrite)
}

// StageOf returns the stage named by the outermost StageError in err.
func StageOf(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
