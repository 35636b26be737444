// Package tool exposes browser operations to the agent as callable tools.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/domain/entity"
	"formfill-agent/internal/infrastructure/browser/htmlclean"
)

const (
	maxPageTextChars = 20000
	maxWaitSeconds   = 120
)

// browserTool carries what every browser tool needs.
type browserTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func parseArgs(args string, v any) error {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// BrowserTools returns the full tool set bound to one browser.
// Screenshots are written under artifactDir; an empty dir disables saving.
func BrowserTools(browser output.BrowserPort, logger output.LoggerPort, artifactDir string) []output.ToolPort {
	return []output.ToolPort{
		NewNavigateTool(browser, logger),
		NewClickTool(browser, logger),
		NewFillTool(browser, logger),
		NewSelectOptionTool(browser, logger),
		NewPressEnterTool(browser, logger),
		NewScrollTool(browser, logger),
		NewWaitTool(browser, logger),
		NewPageInfoTool(browser, logger),
		NewExtractTextTool(browser, logger),
		NewUISummaryTool(browser, logger),
		NewScreenshotTool(browser, logger, artifactDir),
	}
}

type NavigateTool struct{ browserTool }

func NewNavigateTool(browser output.BrowserPort, logger output.LoggerPort) *NavigateTool {
	return &NavigateTool{browserTool{browser: browser, logger: logger}}
}

func (t *NavigateTool) Name() entity.ToolName { return entity.ToolBrowserNavigate }
func (t *NavigateTool) Description() string {
	return "Opens a URL in the browser and waits for the page to load."
}
func (t *NavigateTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"url": stringProp("Absolute URL to open"),
	}, "url")
}

func (t *NavigateTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := parseArgs(args, &input); err != nil {
		return "", err
	}
	if err := t.browser.Navigate(ctx, input.URL); err != nil {
		return "", err
	}
	return fmt.Sprintf("Navigated to %s", t.browser.CurrentURL()), nil
}

type ClickTool struct{ browserTool }

func NewClickTool(browser output.BrowserPort, logger output.LoggerPort) *ClickTool {
	return &ClickTool{browserTool{browser: browser, logger: logger}}
}

func (t *ClickTool) Name() entity.ToolName { return entity.ToolBrowserClick }
func (t *ClickTool) Description() string {
	return "Clicks an element found by CSS selector or XPath (prefix XPath with // or xpath=)."
}
func (t *ClickTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"selector": stringProp("CSS or XPath selector"),
	}, "selector")
}

func (t *ClickTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Selector string `json:"selector"`
	}
	if err := parseArgs(args, &input); err != nil {
		return "", err
	}
	if err := t.browser.Click(ctx, input.Selector); err != nil {
		return "", err
	}
	return fmt.Sprintf("Clicked %s", input.Selector), nil
}

type FillTool struct{ browserTool }

func NewFillTool(browser output.BrowserPort, logger output.LoggerPort) *FillTool {
	return &FillTool{browserTool{browser: browser, logger: logger}}
}

func (t *FillTool) Name() entity.ToolName { return entity.ToolBrowserFill }
func (t *FillTool) Description() string {
	return "Clears an input or textarea and types text into it."
}
func (t *FillTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"selector": stringProp("CSS or XPath selector of the field"),
		"text":     stringProp("Text to type"),
	}, "selector", "text")
}

func (t *FillTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Selector string `json:"selector"`
		Text     string `json:"text"`
	}
	if err := parseArgs(args, &input); err != nil {
		return "", err
	}
	if err := t.browser.Fill(ctx, input.Selector, input.Text); err != nil {
		return "", err
	}
	return fmt.Sprintf("Filled '%s' with text", input.Selector), nil
}

type SelectOptionTool struct{ browserTool }

func NewSelectOptionTool(browser output.BrowserPort, logger output.LoggerPort) *SelectOptionTool {
	return &SelectOptionTool{browserTool{browser: browser, logger: logger}}
}

func (t *SelectOptionTool) Name() entity.ToolName { return entity.ToolBrowserSelect }
func (t *SelectOptionTool) Description() string {
	return "Chooses an option of a <select> element by visible text or value."
}
func (t *SelectOptionTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"selector": stringProp("CSS or XPath selector of the select element"),
		"option":   stringProp("Visible option text, or its value"),
	}, "selector", "option")
}

func (t *SelectOptionTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Selector string `json:"selector"`
		Option   string `json:"option"`
	}
	if err := parseArgs(args, &input); err != nil {
		return "", err
	}
	if err := t.browser.SelectOption(ctx, input.Selector, input.Option); err != nil {
		return "", err
	}
	return fmt.Sprintf("Selected '%s' in %s", input.Option, input.Selector), nil
}

type PressEnterTool struct{ browserTool }

func NewPressEnterTool(browser output.BrowserPort, logger output.LoggerPort) *PressEnterTool {
	return &PressEnterTool{browserTool{browser: browser, logger: logger}}
}

func (t *PressEnterTool) Name() entity.ToolName { return entity.ToolBrowserPressEnter }
func (t *PressEnterTool) Description() string {
	return "Presses Enter in the focused element."
}
func (t *PressEnterTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

func (t *PressEnterTool) Execute(ctx context.Context, args string) (string, error) {
	if err := t.browser.PressEnter(ctx); err != nil {
		return "", err
	}
	return "Enter pressed", nil
}

type ScrollTool struct{ browserTool }

func NewScrollTool(browser output.BrowserPort, logger output.LoggerPort) *ScrollTool {
	return &ScrollTool{browserTool{browser: browser, logger: logger}}
}

func (t *ScrollTool) Name() entity.ToolName { return entity.ToolBrowserScroll }
func (t *ScrollTool) Description() string   { return "Scrolls the page." }
func (t *ScrollTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"direction": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"up", "down", "top", "bottom"},
			"description": "Scroll direction",
		},
		"amount": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels to scroll for up/down; omit for two screens",
		},
	}, "direction")
}

func (t *ScrollTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Direction string `json:"direction"`
		Amount    int    `json:"amount"`
	}
	if err := parseArgs(args, &input); err != nil {
		return "", err
	}
	if err := t.browser.Scroll(ctx, input.Direction, input.Amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("Scrolled %s", input.Direction), nil
}

type WaitTool struct{ browserTool }

func NewWaitTool(browser output.BrowserPort, logger output.LoggerPort) *WaitTool {
	return &WaitTool{browserTool{browser: browser, logger: logger}}
}

func (t *WaitTool) Name() entity.ToolName { return entity.ToolBrowserWait }
func (t *WaitTool) Description() string {
	return "Waits up to the given number of seconds for the page to settle after navigation or DOM updates."
}
func (t *WaitTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"seconds": map[string]interface{}{
			"type":        "integer",
			"description": fmt.Sprintf("Upper bound in seconds (1-%d)", maxWaitSeconds),
		},
	}, "seconds")
}

func (t *WaitTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Seconds int `json:"seconds"`
	}
	if err := parseArgs(args, &input); err != nil {
		return "", err
	}
	seconds := min(max(input.Seconds, 1), maxWaitSeconds)

	start := time.Now()
	if err := t.browser.WaitIdle(ctx, time.Duration(seconds)*time.Second); err != nil {
		return "", err
	}
	return fmt.Sprintf("Page settled after %.1fs", time.Since(start).Seconds()), nil
}

type PageInfoTool struct{ browserTool }

func NewPageInfoTool(browser output.BrowserPort, logger output.LoggerPort) *PageInfoTool {
	return &PageInfoTool{browserTool{browser: browser, logger: logger}}
}

func (t *PageInfoTool) Name() entity.ToolName { return entity.ToolBrowserPageInfo }
func (t *PageInfoTool) Description() string {
	return "Returns the current URL and page title."
}
func (t *PageInfoTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

func (t *PageInfoTool) Execute(ctx context.Context, args string) (string, error) {
	info, err := t.browser.PageInfo(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type ExtractTextTool struct{ browserTool }

func NewExtractTextTool(browser output.BrowserPort, logger output.LoggerPort) *ExtractTextTool {
	return &ExtractTextTool{browserTool{browser: browser, logger: logger}}
}

func (t *ExtractTextTool) Name() entity.ToolName { return entity.ToolBrowserExtract }
func (t *ExtractTextTool) Description() string {
	return "Returns the visible text of the page, or its cleaned HTML when format is \"html\". Use it to read messages and verify results."
}
func (t *ExtractTextTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"format": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"text", "html"},
			"description": "text (default) or html",
		},
	})
}

func (t *ExtractTextTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Format string `json:"format"`
	}
	if err := parseArgs(args, &input); err != nil {
		return "", err
	}

	if input.Format == "html" {
		content, err := t.browser.GetPageContent(ctx)
		if err != nil {
			return "", err
		}
		return htmlclean.Clean(content.HTML, nil), nil
	}

	text, err := t.browser.GetPageText(ctx)
	if err != nil {
		return "", err
	}
	if r := []rune(text); len(r) > maxPageTextChars {
		text = string(r[:maxPageTextChars]) + "\n... (truncated)"
	}
	t.logger.Debug("Extracted page text", "chars", len(text))
	return text, nil
}

type UISummaryTool struct{ browserTool }

func NewUISummaryTool(browser output.BrowserPort, logger output.LoggerPort) *UISummaryTool {
	return &UISummaryTool{browserTool{browser: browser, logger: logger}}
}

func (t *UISummaryTool) Name() entity.ToolName { return entity.ToolBrowserUISummary }
func (t *UISummaryTool) Description() string {
	return "Lists visible inputs, selects, buttons and links with their labels, placeholders, names, ids and a selector for each."
}
func (t *UISummaryTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

func (t *UISummaryTool) Execute(ctx context.Context, args string) (string, error) {
	elements, err := t.browser.GetUIElements(ctx)
	if err != nil {
		return "", err
	}
	if len(elements) == 0 {
		return "No interactive elements found", nil
	}
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type ScreenshotTool struct {
	browserTool
	dir string
	now func() time.Time
}

func NewScreenshotTool(browser output.BrowserPort, logger output.LoggerPort, dir string) *ScreenshotTool {
	return &ScreenshotTool{
		browserTool: browserTool{browser: browser, logger: logger},
		dir:         dir,
		now:         time.Now,
	}
}

func (t *ScreenshotTool) Name() entity.ToolName { return entity.ToolBrowserScreenshot }
func (t *ScreenshotTool) Description() string {
	return "Captures the page as a JPEG and saves it for the operator."
}
func (t *ScreenshotTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

func (t *ScreenshotTool) Execute(ctx context.Context, args string) (string, error) {
	shot, err := t.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if t.dir == "" {
		return fmt.Sprintf("Screenshot captured (%dx%d, not saved)", shot.Width, shot.Height), nil
	}

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	name := fmt.Sprintf("screenshot_%s.%s", t.now().Format("20060102_150405.000"), shot.Format)
	path := filepath.Join(t.dir, name)
	if err := os.WriteFile(path, shot.Data, 0o644); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}

	t.logger.Info("Screenshot saved", "path", path)
	return fmt.Sprintf("Screenshot saved to %s (%dx%d)", path, shot.Width, shot.Height), nil
}
