package entity

import "strings"

// RenderedTask is the instruction script handed to the browser agent. The
// agent never sees the structured request, only these lines.
type RenderedTask struct {
	lines []string
}

func NewRenderedTask(lines []string) RenderedTask {
	return RenderedTask{lines: append([]string(nil), lines...)}
}

func (t RenderedTask) Lines() []string {
	return append([]string(nil), t.lines...)
}

func (t RenderedTask) Len() int {
	return len(t.lines)
}

func (t RenderedTask) String() string {
	return strings.Join(t.lines, "\n")
}
