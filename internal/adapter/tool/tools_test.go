package tool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"formfill-agent/internal/domain/entity"
	"formfill-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBrowser struct {
	calls    []string
	err      error
	url      string
	text     string
	html     string
	elements []entity.UIElement
	waited   time.Duration
}

func (f *fakeBrowser) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error {
	if err := f.record("navigate " + url); err != nil {
		return err
	}
	f.url = url
	return nil
}
func (f *fakeBrowser) Click(ctx context.Context, selector string) error {
	return f.record("click " + selector)
}
func (f *fakeBrowser) Fill(ctx context.Context, selector, text string) error {
	return f.record("fill " + selector + "=" + text)
}
func (f *fakeBrowser) SelectOption(ctx context.Context, selector, option string) error {
	return f.record("select " + selector + "=" + option)
}
func (f *fakeBrowser) PressEnter(ctx context.Context) error { return f.record("enter") }
func (f *fakeBrowser) Scroll(ctx context.Context, direction string, amount int) error {
	return f.record("scroll " + direction)
}
func (f *fakeBrowser) WaitIdle(ctx context.Context, timeout time.Duration) error {
	f.waited = timeout
	return f.record("wait")
}
func (f *fakeBrowser) GetPageContent(ctx context.Context) (*entity.PageContent, error) {
	return &entity.PageContent{URL: f.url, HTML: f.html}, f.record("content")
}
func (f *fakeBrowser) GetPageText(ctx context.Context) (string, error) {
	return f.text, f.record("text")
}
func (f *fakeBrowser) GetUIElements(ctx context.Context) ([]entity.UIElement, error) {
	return f.elements, f.record("ui")
}
func (f *fakeBrowser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	return &entity.Screenshot{Data: []byte("jpeg"), Format: "jpeg", Width: 800, Height: 600}, f.record("screenshot")
}
func (f *fakeBrowser) PageInfo(ctx context.Context) (*entity.PageInfo, error) {
	return &entity.PageInfo{URL: f.url, Title: "Sign in"}, f.record("info")
}
func (f *fakeBrowser) CurrentURL() string { return f.url }
func (f *fakeBrowser) Close()             {}

func TestBrowserTools_Names(t *testing.T) {
	tools := BrowserTools(&fakeBrowser{}, logger.NewNopLogger(), "")

	var names []entity.ToolName
	for _, tl := range tools {
		names = append(names, tl.Name())
		params := tl.Parameters()
		assert.Equal(t, "object", params["type"], tl.Name())
		assert.NotEmpty(t, tl.Description(), tl.Name())
	}
	assert.Equal(t, []entity.ToolName{
		entity.ToolBrowserNavigate,
		entity.ToolBrowserClick,
		entity.ToolBrowserFill,
		entity.ToolBrowserSelect,
		entity.ToolBrowserPressEnter,
		entity.ToolBrowserScroll,
		entity.ToolBrowserWait,
		entity.ToolBrowserPageInfo,
		entity.ToolBrowserExtract,
		entity.ToolBrowserUISummary,
		entity.ToolBrowserScreenshot,
	}, names)
}

func TestTools_ForwardToBrowser(t *testing.T) {
	b := &fakeBrowser{}
	log := logger.NewNopLogger()
	ctx := context.Background()

	tests := []struct {
		tool     interface {
			Execute(context.Context, string) (string, error)
		}
		args     string
		wantCall string
		wantOut  string
	}{
		{NewNavigateTool(b, log), `{"url":"http://localhost/login"}`, "navigate http://localhost/login", "Navigated to http://localhost/login"},
		{NewClickTool(b, log), `{"selector":"#go"}`, "click #go", "Clicked #go"},
		{NewFillTool(b, log), `{"selector":"#email","text":"a@b.com"}`, "fill #email=a@b.com", "Filled '#email' with text"},
		{NewSelectOptionTool(b, log), `{"selector":"#country","option":"France"}`, "select #country=France", "Selected 'France' in #country"},
		{NewPressEnterTool(b, log), ``, "enter", "Enter pressed"},
		{NewScrollTool(b, log), `{"direction":"down"}`, "scroll down", "Scrolled down"},
	}

	for _, tt := range tests {
		out, err := tt.tool.Execute(ctx, tt.args)
		require.NoError(t, err, tt.wantCall)
		assert.Equal(t, tt.wantOut, out)
		assert.Equal(t, tt.wantCall, b.calls[len(b.calls)-1])
	}
}

func TestTools_InvalidArguments(t *testing.T) {
	_, err := NewFillTool(&fakeBrowser{}, logger.NewNopLogger()).Execute(context.Background(), `{"selector":`)
	assert.ErrorContains(t, err, "invalid arguments")
}

func TestTools_BrowserErrorPropagates(t *testing.T) {
	b := &fakeBrowser{err: errors.New("element not found: #go")}

	_, err := NewClickTool(b, logger.NewNopLogger()).Execute(context.Background(), `{"selector":"#go"}`)
	assert.EqualError(t, err, "element not found: #go")
}

func TestWaitTool_ClampsSeconds(t *testing.T) {
	b := &fakeBrowser{}
	wait := NewWaitTool(b, logger.NewNopLogger())

	_, err := wait.Execute(context.Background(), `{"seconds":45}`)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, b.waited)

	_, err = wait.Execute(context.Background(), `{"seconds":0}`)
	require.NoError(t, err)
	assert.Equal(t, time.Second, b.waited)

	_, err = wait.Execute(context.Background(), `{"seconds":100000}`)
	require.NoError(t, err)
	assert.Equal(t, maxWaitSeconds*time.Second, b.waited)
}

func TestPageInfoTool(t *testing.T) {
	b := &fakeBrowser{url: "http://localhost/home"}

	out, err := NewPageInfoTool(b, logger.NewNopLogger()).Execute(context.Background(), `{}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"http://localhost/home","title":"Sign in"}`, out)
}

func TestExtractTextTool(t *testing.T) {
	b := &fakeBrowser{
		text: "Welcome back, test@example.com",
		html: `<html><body><p>Hi</p><script>x()</script></body></html>`,
	}
	extract := NewExtractTextTool(b, logger.NewNopLogger())

	out, err := extract.Execute(context.Background(), ``)
	require.NoError(t, err)
	assert.Equal(t, "Welcome back, test@example.com", out)

	out, err = extract.Execute(context.Background(), `{"format":"html"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Hi</p>")
	assert.NotContains(t, out, "script")

	b.text = strings.Repeat("é", maxPageTextChars+10)
	out, err = extract.Execute(context.Background(), ``)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "... (truncated)"))
}

func TestUISummaryTool(t *testing.T) {
	b := &fakeBrowser{}
	summary := NewUISummaryTool(b, logger.NewNopLogger())

	out, err := summary.Execute(context.Background(), `{}`)
	require.NoError(t, err)
	assert.Equal(t, "No interactive elements found", out)

	b.elements = []entity.UIElement{{ID: "ui-0000", Type: "input", Label: "Email", Enabled: true, Selector: "#email"}}
	out, err = summary.Execute(context.Background(), `{}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"label": "Email"`)
	assert.Contains(t, out, `"selector": "#email"`)
}

func TestScreenshotTool_SavesToArtifactDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	shot := NewScreenshotTool(&fakeBrowser{}, logger.NewNopLogger(), dir)
	shot.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	out, err := shot.Execute(context.Background(), `{}`)
	require.NoError(t, err)

	path := filepath.Join(dir, "screenshot_20250102_030405.000.jpeg")
	assert.Equal(t, "Screenshot saved to "+path+" (800x600)", out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestScreenshotTool_WithoutDir(t *testing.T) {
	out, err := NewScreenshotTool(&fakeBrowser{}, logger.NewNopLogger(), "").Execute(context.Background(), `{}`)
	require.NoError(t, err)
	assert.Equal(t, "Screenshot captured (800x600, not saved)", out)
}
