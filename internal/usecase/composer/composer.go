// Package composer renders a form-fill request into the line-oriented
// instruction script the browser agent follows.
package composer

import (
	"fmt"
	"strings"

	"formfill-agent/internal/domain/entity"
	"formfill-agent/internal/infrastructure/prompts"

	"k8s.io/utils/ptr"
)

const (
	FieldsHeader = "Fields to fill (key -> value):"

	GenericSubmitDirective = "Submit the form by clicking the primary submit button (type=submit) within the same form as the last edited field."
	SummaryDirective       = "Finally, summarize the result in one or two sentences."
	VerificationHeader     = "Verification:"
	PassDirective          = "If verification passes, output PASS and include a short explanation with any matched text."
	FailDirective          = "If verification fails, output FAIL and include a brief reason and any relevant visible error messages."
)

var finalNoteContract = []string{
	"In your final note, include:",
	"- status: PASS or FAIL (if checks were requested; otherwise DONE)",
	"- final URL",
	"- page title",
	"- a one-paragraph summary",
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Compose never fails and has no side effects: equal requests give
// byte-identical tasks.
func Compose(req entity.FormFillRequest) entity.RenderedTask {
	lines := make([]string, 0, 24+len(req.Fields))

	lines = append(lines,
		fmt.Sprintf("Open %s.", req.URL),
		"Wait until the page is fully interactive.",
	)

	lines = append(lines, prompts.LocatorPolicyLines()...)

	lines = append(lines, FieldsHeader)
	for _, field := range req.Fields {
		lines = append(lines, fmt.Sprintf("- %s -> %s", field.Key, SanitizeValue(field.Value)))
	}

	lines = append(lines, submitDirective(req))

	wait := req.WaitAfterSubmitSeconds
	if wait <= 0 {
		wait = entity.DefaultWaitAfterSubmitSeconds
	}
	lines = append(lines, fmt.Sprintf("After submitting, wait up to %d seconds for navigation or DOM updates.", wait))

	if req.HasVerification() {
		lines = append(lines, VerificationHeader)
		for _, c := range verificationChecks(req) {
			lines = append(lines, "- "+c)
		}
		lines = append(lines, PassDirective, FailDirective)
	} else {
		lines = append(lines, SummaryDirective)
	}

	lines = append(lines, finalNoteContract...)

	return entity.NewRenderedTask(lines)
}

// SanitizeValue keeps a field value on a single instruction line.
func SanitizeValue(v string) string {
	return strings.TrimSpace(newlineReplacer.Replace(v))
}

// quotedText is written between literal quotes as given; only line breaks
// are collapsed so the directive stays on one line.
func quotedText(v string) string {
	return newlineReplacer.Replace(v)
}

func submitDirective(req entity.FormFillRequest) string {
	if sel := ptr.Deref(req.SubmitSelector, ""); sel != "" {
		return fmt.Sprintf("Submit the form by clicking the element matching CSS selector: %s.", sel)
	}
	if text := ptr.Deref(req.SubmitText, ""); text != "" {
		return fmt.Sprintf("Submit the form by clicking the most prominent button whose text contains: \"%s\" (case-insensitive).", quotedText(text))
	}
	return GenericSubmitDirective
}

func verificationChecks(req entity.FormFillRequest) []string {
	var checks []string
	if sel := ptr.Deref(req.CheckSelector, ""); sel != "" {
		checks = append(checks, fmt.Sprintf("Confirm that a node matching CSS selector `%s` exists.", sel))
	}
	if text := ptr.Deref(req.MustContainText, ""); text != "" {
		checks = append(checks, fmt.Sprintf("Confirm the resulting page contains the text: \"%s\" (case-insensitive).", quotedText(text)))
	}
	return checks
}
