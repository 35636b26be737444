package output

import (
	"context"
	"time"

	"formfill-agent/internal/domain/entity"
)

// BrowserPort is one page in one browser, owned by a single agent run.
//
// Selectors are CSS unless they start with "/", "(/" or "xpath=", in which
// case they are XPath.
type BrowserPort interface {
	// Actions.
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error
	// SelectOption picks a <select> option by visible text, then by value.
	SelectOption(ctx context.Context, selector, option string) error
	PressEnter(ctx context.Context) error
	Scroll(ctx context.Context, direction string, amount int) error
	WaitIdle(ctx context.Context, timeout time.Duration) error

	// Reads.
	GetPageContent(ctx context.Context) (*entity.PageContent, error)
	GetPageText(ctx context.Context) (string, error)
	GetUIElements(ctx context.Context) ([]entity.UIElement, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	PageInfo(ctx context.Context) (*entity.PageInfo, error)
	CurrentURL() string

	// Close kills the browser when it was launched locally. It is idempotent.
	Close()
}
