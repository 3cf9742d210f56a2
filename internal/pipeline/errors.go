package pipeline

import "fmt"

// Processing step names used in error attribution and logs
const (
	StepSaveMessage  = "save_message"
	StepExtractFacts = "extract_facts"
	StepSaveFacts    = "save_facts"
	StepEmbed        = "embed"
	StepUpsertVector = "upsert_vector"
)

// ProcessError tags a failure with the step it happened at and the message it
// belongs to, so the scheduler can log and move on with unambiguous
// attribution. It never rolls anything back.
type ProcessError struct {
	Step    string
	Subject string
	Folder  string
	Err     error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("processing %q (%s) failed at %s: %v", e.Subject, e.Folder, e.Step, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
