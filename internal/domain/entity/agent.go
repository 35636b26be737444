package entity

// AgentSettings selects the model and browser a per-request agent runs with.
type AgentSettings struct {
	Model           string
	Headless        bool
	UseCloudBrowser bool
}
