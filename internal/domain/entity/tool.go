package entity

type ToolName string

const (
	ToolBrowserNavigate   ToolName = "navigate"
	ToolBrowserClick      ToolName = "click"
	ToolBrowserFill       ToolName = "fill"
	ToolBrowserSelect     ToolName = "select_option"
	ToolBrowserPressEnter ToolName = "press_enter"
	ToolBrowserScroll     ToolName = "scroll"
	ToolBrowserWait       ToolName = "wait"
	ToolBrowserPageInfo   ToolName = "page_info"
	ToolBrowserExtract    ToolName = "extract_text"
	ToolBrowserUISummary  ToolName = "ui_summary"
	ToolBrowserScreenshot ToolName = "screenshot"
)

// ActionFinish labels the final transcript record carrying the agent's answer.
const ActionFinish = "finish"

func (t ToolName) String() string {
	return string(t)
}
