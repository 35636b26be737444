package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"k8s.io/utils/ptr"
)

const (
	DefaultModel                  = "llama3.1:8b"
	DefaultWaitAfterSubmitSeconds = 45
	DefaultTimeoutSeconds         = 300
)

var (
	ErrMissingURL  = errors.New("url is required")
	ErrRelativeURL = errors.New("url must be absolute")
)

// FormFillRequest describes one form to fill, how to submit it and how to
// verify the outcome, plus the options for the agent that does the work.
type FormFillRequest struct {
	URL    string `json:"url"`
	Fields Fields `json:"fields"`

	SubmitSelector *string `json:"submit_selector,omitempty"`
	SubmitText     *string `json:"submit_text,omitempty"`

	CheckSelector   *string `json:"check_selector,omitempty"`
	MustContainText *string `json:"must_contain_text,omitempty"`

	WaitAfterSubmitSeconds int `json:"wait_after_submit_seconds"`

	Model           string `json:"model"`
	Headless        bool   `json:"headless"`
	UseCloudBrowser bool   `json:"use_cloud_browser"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
}

func DefaultFormFillRequest() FormFillRequest {
	return FormFillRequest{
		Fields:                 Fields{},
		WaitAfterSubmitSeconds: DefaultWaitAfterSubmitSeconds,
		Model:                  DefaultModel,
		Headless:               true,
		TimeoutSeconds:         DefaultTimeoutSeconds,
	}
}

// UnmarshalJSON starts from DefaultFormFillRequest so that absent keys keep
// their defaults (headless in particular defaults to true).
func (r *FormFillRequest) UnmarshalJSON(data []byte) error {
	type plain FormFillRequest
	p := plain(DefaultFormFillRequest())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = FormFillRequest(p)
	return nil
}

// WithDefaults fills zero or non-positive values with their defaults.
func (r FormFillRequest) WithDefaults() FormFillRequest {
	if r.Fields == nil {
		r.Fields = Fields{}
	}
	if r.WaitAfterSubmitSeconds <= 0 {
		r.WaitAfterSubmitSeconds = DefaultWaitAfterSubmitSeconds
	}
	if strings.TrimSpace(r.Model) == "" {
		r.Model = DefaultModel
	}
	if r.TimeoutSeconds <= 0 {
		r.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return r
}

func (r FormFillRequest) Validate() error {
	raw := strings.TrimSpace(r.URL)
	if raw == "" {
		return ErrMissingURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if !u.IsAbs() || (u.Host == "" && u.Scheme != "file") {
		return fmt.Errorf("%w: %q", ErrRelativeURL, raw)
	}
	return nil
}

func (r FormFillRequest) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// HasVerification reports whether any post-submit predicate is set.
func (r FormFillRequest) HasVerification() bool {
	return ptr.Deref(r.CheckSelector, "") != "" || ptr.Deref(r.MustContainText, "") != ""
}

func (r FormFillRequest) AgentSettings() AgentSettings {
	return AgentSettings{
		Model:           r.Model,
		Headless:        r.Headless,
		UseCloudBrowser: r.UseCloudBrowser,
	}
}
