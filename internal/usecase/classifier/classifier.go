// Package classifier reduces an agent transcript, or the failure that
// prevented one, to a bounded ClassifiedResult.
package classifier

import (
	"fmt"
	"strings"
	"time"

	"formfill-agent/internal/domain/entity"
)

const (
	MaxSteps        = 40
	MaxNoteChars    = 180
	MaxRawStepChars = 200
	MaxFinalChars   = 1000

	defaultAction = "action"
)

type tagToken struct {
	token string
	tag   entity.ResultTag
}

// tagPriority is scanned in order; the first token found in the final note wins.
var tagPriority = []tagToken{
	{token: "PASS", tag: entity.ResultPass},
	{token: "FAIL", tag: entity.ResultFail},
	{token: "DONE", tag: entity.ResultDone},
}

// Classify never fails; records it cannot read are rendered as text.
func Classify(t entity.Transcript) entity.ClassifiedResult {
	steps := make([]string, 0, min(len(t), MaxSteps))
	for i, rec := range t {
		if i >= MaxSteps {
			break
		}
		steps = append(steps, RenderStep(i+1, rec))
	}

	final := ""
	if last, ok := t.Last(); ok {
		final = finalNote(last)
	}

	return entity.ClassifiedResult{
		Result: TagFor(final),
		Final:  final,
		Steps:  steps,
	}
}

// ClassifyTimeout is the result for an agent that exceeded its budget.
func ClassifyTimeout(budget time.Duration) entity.ClassifiedResult {
	return entity.ClassifiedResult{
		Result: entity.ResultTimeout,
		Final:  fmt.Sprintf("Timed out after %ds", int(budget/time.Second)),
		Steps:  []string{},
	}
}

// ClassifyError is the result for an agent that failed without a transcript.
func ClassifyError(err error) entity.ClassifiedResult {
	final := ""
	if err != nil {
		final = err.Error()
	}
	return entity.ClassifiedResult{
		Result: entity.ResultError,
		Final:  final,
		Steps:  []string{},
	}
}

// TagFor returns the tag of the first priority token contained in note,
// ignoring case, or DONE when none is present. Matching is a plain substring
// search: "FAILURE" contains FAIL.
func TagFor(note string) entity.ResultTag {
	upper := strings.ToUpper(note)
	for _, p := range tagPriority {
		if strings.Contains(upper, p.token) {
			return p.tag
		}
	}
	return entity.ResultDone
}

func RenderStep(index int, rec entity.StepRecord) string {
	if rec.Kind == entity.RecordOpaque {
		return fmt.Sprintf("Step %d: %s", index, truncate(rec.Raw, MaxRawStepChars))
	}

	action := rec.Action
	if action == "" {
		action = defaultAction
	}
	return fmt.Sprintf("Step %d: %s — %s", index, action, truncate(rec.Note, MaxNoteChars))
}

func finalNote(rec entity.StepRecord) string {
	if rec.Kind == entity.RecordOpaque {
		return truncate(rec.Raw, MaxFinalChars)
	}
	return rec.Note
}

// truncate cuts s to at most n characters, counting runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
