package entity

type PageContent struct {
	URL        string
	Title      string
	HTML       string
	UIElements []UIElement
}

type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// UIElement is one interactive element as the agent sees it. Label,
// Placeholder, Name and ElementID are what the locator policy matches keys
// against.
type UIElement struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Name        string `json:"name,omitempty"`
	ElementID   string `json:"element_id,omitempty"`
	AriaLabel   string `json:"aria_label,omitempty"`
	Role        string `json:"role,omitempty"`
	Enabled     bool   `json:"enabled"`
	Selector    string `json:"selector"`
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
