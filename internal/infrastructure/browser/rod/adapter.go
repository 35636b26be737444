package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

var (
	ErrBrowserNotConnected    = errors.New("browser not connected")
	ErrInvalidURL             = errors.New("invalid url")
	ErrInvalidSelector        = errors.New("invalid selector")
	ErrInvalidScrollDirection = errors.New("invalid scroll direction")
)

const (
	defaultTimeout     = 10 * time.Second
	defaultSlowMotion  = 0
	navigationTimeout  = 30 * time.Second
	maxUIElements      = 500
	screenshotMaxWidth = 1024
)

type BrowserAdapter struct {
	mu       sync.RWMutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	closed   bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	// DisableSecurityFeatures turns off web security for pages that mix
	// origins; only meant for local test targets.
	DisableSecurityFeatures bool
	// RemoteURL connects to an already running browser (a cloud browser
	// websocket endpoint) instead of launching a local one.
	RemoteURL string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	var (
		l          *launcher.Launcher
		controlURL = cfg.RemoteURL
	)
	if controlURL == "" {
		l = launcher.New().
			Context(ctx).
			Headless(cfg.Headless).
			Devtools(cfg.DevTools).
			NoSandbox(cfg.NoSandbox).
			Delete("use-mock-keychain")
		if cfg.DisableSecurityFeatures {
			l = l.Set("disable-web-security").
				Set("allow-running-insecure-content")
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		cleanupLauncher(l)
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		cleanupLauncher(l)
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

// activePage returns the page bound to ctx, or ErrBrowserNotConnected.
func (b *BrowserAdapter) activePage(ctx context.Context) (*rod.Page, time.Duration, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed || b.page == nil {
		return nil, 0, ErrBrowserNotConnected
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return b.page.Context(ctx), b.timeout, nil
}

func (b *BrowserAdapter) element(ctx context.Context, selector string) (*rod.Element, error) {
	page, timeout, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, ErrInvalidSelector
	}

	var el *rod.Element
	if isXPathSelector(selector) {
		el, err = page.Timeout(timeout).ElementX(strings.TrimPrefix(selector, "xpath="))
	} else {
		el, err = page.Timeout(timeout).Element(selector)
	}
	if err != nil {
		return nil, fmt.Errorf("element not found: %s: %w", selector, err)
	}
	return el.CancelTimeout(), nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	page, _, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := validateURL(url); err != nil {
		return err
	}

	p := page.Timeout(navigationTimeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load failed: %w", err)
	}
	_ = page.WaitIdle(5 * time.Second)
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return err
	}

	_ = el.ScrollIntoView()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	b.settle(ctx, 2*time.Second)
	return nil
}

func (b *BrowserAdapter) Fill(ctx context.Context, selector, text string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("field not found: %w", err)
	}

	_ = el.ScrollIntoView()
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

// SelectOption picks an <option> by its visible text, falling back to its
// value attribute.
func (b *BrowserAdapter) SelectOption(ctx context.Context, selector, option string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("select not found: %w", err)
	}

	_ = el.ScrollIntoView()
	if err := el.Select([]string{option}, true, rod.SelectorTypeText); err == nil {
		return nil
	}

	res, err := el.Eval(`function (v) {
		const opt = Array.from(this.options || []).find(o => o.value === v);
		if (!opt) return false;
		this.value = v;
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}`, option)
	if err != nil {
		return fmt.Errorf("select failed: %w", err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("option %q not found in %s", option, selector)
	}
	return nil
}

func (b *BrowserAdapter) PressEnter(ctx context.Context) error {
	page, _, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Keyboard.Type(input.Enter); err != nil {
		return fmt.Errorf("failed to press Enter: %w", err)
	}
	b.settle(ctx, time.Second)
	return nil
}

// Scroll moves by amount pixels, or by two viewports when amount is zero.
func (b *BrowserAdapter) Scroll(ctx context.Context, direction string, amount int) error {
	page, _, err := b.activePage(ctx)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "down":
		_, err = page.Eval(`(dy) => window.scrollBy(0, dy > 0 ? dy : window.innerHeight * 2)`, amount)
	case "up":
		_, err = page.Eval(`(dy) => window.scrollBy(0, -(dy > 0 ? dy : window.innerHeight * 2))`, amount)
	case "top":
		_, err = page.Eval(`() => window.scrollTo(0, 0)`)
	case "bottom":
		_, err = page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScrollDirection, direction)
	}
	if err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}

	b.settle(ctx, 800*time.Millisecond)
	return nil
}

func (b *BrowserAdapter) WaitIdle(ctx context.Context, timeout time.Duration) error {
	page, _, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.WaitIdle(timeout); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// settle gives the page a short chance to go idle; failures are ignored.
func (b *BrowserAdapter) settle(ctx context.Context, d time.Duration) {
	if page, _, err := b.activePage(ctx); err == nil {
		_ = page.WaitIdle(d)
	}
}

func (b *BrowserAdapter) body(ctx context.Context) (*rod.Element, error) {
	page, timeout, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	body, err := page.Timeout(timeout).Element("body")
	if err != nil {
		return nil, fmt.Errorf("body not found: %w", err)
	}
	return body.CancelTimeout(), nil
}

func (b *BrowserAdapter) GetPageContent(ctx context.Context) (*entity.PageContent, error) {
	info, err := b.PageInfo(ctx)
	if err != nil {
		return nil, err
	}

	body, err := b.body(ctx)
	if err != nil {
		return nil, err
	}
	html, err := body.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}

	elements, err := b.GetUIElements(ctx)
	if err != nil {
		elements = nil
	}

	return &entity.PageContent{
		URL:        info.URL,
		Title:      info.Title,
		HTML:       html,
		UIElements: elements,
	}, nil
}

// GetPageText returns the rendered text of the body.
func (b *BrowserAdapter) GetPageText(ctx context.Context) (string, error) {
	body, err := b.body(ctx)
	if err != nil {
		return "", err
	}
	text, err := body.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var uiQueries = []struct {
	selector string
	typ      string
}{
	{"input:not([type=hidden]), textarea", "input"},
	{"select", "select"},
	{"button, input[type=submit], [role='button']", "button"},
	{"a[href]", "link"},
}

const labelJS = `function () {
	if (this.labels && this.labels.length) return this.labels[0].innerText.trim();
	const by = this.getAttribute('aria-labelledby');
	if (by) {
		const l = document.getElementById(by);
		if (l) return l.innerText.trim();
	}
	return '';
}`

func (b *BrowserAdapter) GetUIElements(ctx context.Context) ([]entity.UIElement, error) {
	page, _, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}

	var result []entity.UIElement
	seen := make(map[string]bool)

	add := func(el *rod.Element, typ string) {
		if len(result) >= maxUIElements {
			return
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			return
		}
		selector, err := el.GetXPath(true)
		if err != nil || seen[selector] {
			return
		}
		seen[selector] = true

		text, _ := el.Text()
		disabled, _ := el.Attribute("disabled")

		element := entity.UIElement{
			ID:          fmt.Sprintf("ui-%04d", len(result)),
			Type:        typ,
			Text:        strings.TrimSpace(text),
			Placeholder: attr(el, "placeholder"),
			Name:        attr(el, "name"),
			ElementID:   attr(el, "id"),
			AriaLabel:   attr(el, "aria-label"),
			Role:        attr(el, "role"),
			Enabled:     disabled == nil,
			Selector:    selector,
		}
		if typ == "input" || typ == "select" {
			if res, err := el.Eval(labelJS); err == nil {
				element.Label = res.Value.Str()
			}
		}
		result = append(result, element)
	}

	for _, q := range uiQueries {
		elements, err := page.Elements(q.selector)
		if err != nil {
			continue
		}
		for _, el := range elements {
			add(el, q.typ)
		}
	}

	return result, nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, _, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}

	imgBytes, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > screenshotMaxWidth {
		img = imaging.Resize(img, screenshotMaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) PageInfo(ctx context.Context) (*entity.PageInfo, error) {
	page, _, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info failed: %w", err)
	}
	return &entity.PageInfo{URL: info.URL, Title: info.Title}, nil
}

// CurrentURL returns "" when the page is gone.
func (b *BrowserAdapter) CurrentURL() string {
	info, err := b.PageInfo(context.Background())
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	if b.browser != nil {
		_ = b.browser.Close()
	}
	cleanupLauncher(b.launcher)
	b.page = nil
}

func cleanupLauncher(l *launcher.Launcher) {
	if l == nil {
		return
	}
	l.Kill()
	l.Cleanup()
}

func attr(el *rod.Element, name string) string {
	v, err := el.Attribute(name)
	if err != nil {
		return ""
	}
	return pointerToString(v)
}

func pointerToString(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}

var allowedSchemes = []string{"http://", "https://", "file://", "about:"}

func validateURL(raw string) error {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, scheme := range allowedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
}

func isXPathSelector(selector string) bool {
	return strings.HasPrefix(selector, "/") ||
		strings.HasPrefix(selector, "(/") ||
		strings.HasPrefix(selector, "xpath=")
}
