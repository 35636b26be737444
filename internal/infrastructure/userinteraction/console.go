package userinteraction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*ConsoleReporter)(nil)

// ConsoleReporter prints agent progress and results for a human operator.
// Several agents may share one reporter, so writes are serialized.
type ConsoleReporter struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
	prefix  string
}

type Option func(*ConsoleReporter)

func WithoutColor() Option {
	return func(r *ConsoleReporter) { r.noColor = true }
}

func NewConsoleReporter(out io.Writer, opts ...Option) *ConsoleReporter {
	if out == nil {
		out = os.Stderr
	}
	r := &ConsoleReporter{out: out}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fork returns a reporter writing to the same output with another prefix.
func (r *ConsoleReporter) Fork(prefix string) *ConsoleReporter {
	return &ConsoleReporter{out: &lockedWriter{r: r}, noColor: r.noColor, prefix: prefix}
}

type lockedWriter struct{ r *ConsoleReporter }

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	return w.r.out.Write(p)
}

func (r *ConsoleReporter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.noColor {
		c.DisableColor()
	}
	return c
}

// printf writes one line with a single Write so forked reporters never
// interleave mid-line.
func (r *ConsoleReporter) printf(c *color.Color, format string, args ...any) {
	line := r.prefix + c.Sprintf(format, args...)
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.out, line)
}

func (r *ConsoleReporter) ShowIteration(ctx context.Context, iteration, maxIterations int) {
	r.printf(r.paint(color.FgCyan, color.Bold), "━━━ Step %d/%d ━━━\n", iteration, maxIterations)
}

func (r *ConsoleReporter) ShowThinking(ctx context.Context, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	r.printf(r.paint(color.Faint), "💭 %s\n", truncate(oneLine(content), 500))
}

func (r *ConsoleReporter) ShowToolStart(ctx context.Context, toolName, arguments string) {
	icon := toolIcon(toolName)
	summary := formatToolArguments(toolName, arguments)
	if summary == "" {
		r.printf(r.paint(color.FgYellow, color.Bold), "%s %s\n", icon, toolName)
		return
	}
	r.printf(r.paint(color.FgYellow, color.Bold), "%s %s  %s\n", icon, toolName, summary)
}

func (r *ConsoleReporter) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	if isError {
		r.printf(r.paint(color.FgRed), "   ✗ %s\n", truncate(oneLine(result), 300))
		return
	}
	r.printf(r.paint(color.FgGreen), "   ✓ %s\n", formatToolResult(toolName, result))
}

var resultColors = map[entity.ResultTag][]color.Attribute{
	entity.ResultPass:    {color.FgGreen, color.Bold},
	entity.ResultFail:    {color.FgRed, color.Bold},
	entity.ResultDone:    {color.FgBlue, color.Bold},
	entity.ResultTimeout: {color.FgYellow, color.Bold},
	entity.ResultError:   {color.FgMagenta, color.Bold},
}

// PrintResponse renders a response with its result tag colored.
func (r *ConsoleReporter) PrintResponse(label string, resp entity.FormFillResponse) {
	head := r.paint(resultColors[resp.Result]...)
	if label != "" {
		r.printf(head, "[%s] %s (%s)\n", resp.Result, label, resp.Model)
	} else {
		r.printf(head, "[%s] (%s)\n", resp.Result, resp.Model)
	}

	plain := r.paint()
	if resp.Final != "" {
		r.printf(plain, "%s\n", resp.Final)
	}
	dim := r.paint(color.Faint)
	for _, s := range resp.Steps {
		r.printf(dim, "  %s\n", s)
	}
}

func toolIcon(toolName string) string {
	switch entity.ToolName(toolName) {
	case entity.ToolBrowserNavigate:
		return "🌐"
	case entity.ToolBrowserClick:
		return "🖱️"
	case entity.ToolBrowserFill, entity.ToolBrowserSelect:
		return "✏️"
	case entity.ToolBrowserScroll:
		return "📜"
	case entity.ToolBrowserScreenshot:
		return "📸"
	case entity.ToolBrowserPressEnter:
		return "⏎"
	case entity.ToolBrowserWait:
		return "⏳"
	case entity.ToolBrowserExtract, entity.ToolBrowserUISummary, entity.ToolBrowserPageInfo:
		return "🔍"
	default:
		return "🔧"
	}
}

func formatToolArguments(toolName, arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}
	str := func(key string) string {
		s, _ := args[key].(string)
		return s
	}

	switch entity.ToolName(toolName) {
	case entity.ToolBrowserNavigate:
		return str("url")
	case entity.ToolBrowserClick:
		return truncate(str("selector"), 60)
	case entity.ToolBrowserFill:
		return fmt.Sprintf("%s → %s", truncate(str("selector"), 40), truncate(str("text"), 30))
	case entity.ToolBrowserSelect:
		return fmt.Sprintf("%s → %s", truncate(str("selector"), 40), truncate(str("option"), 30))
	case entity.ToolBrowserScroll:
		return str("direction")
	case entity.ToolBrowserWait:
		if secs, ok := args["seconds"].(float64); ok {
			return fmt.Sprintf("up to %ds", int(secs))
		}
	}
	return ""
}

func formatToolResult(toolName, result string) string {
	switch entity.ToolName(toolName) {
	case entity.ToolBrowserUISummary:
		var elements []json.RawMessage
		if json.Unmarshal([]byte(result), &elements) == nil {
			return fmt.Sprintf("%d elements", len(elements))
		}
	case entity.ToolBrowserExtract:
		return fmt.Sprintf("%d characters", len([]rune(result)))
	}
	return truncate(oneLine(result), 100)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
