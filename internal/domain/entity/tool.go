package entity

type ToolName string

const (
	ToolWebSearch ToolName = "web_search"
	ToolWebFetch  ToolName = "web_fetch"
	ToolTask      ToolName = "task"
)

func (t ToolName) String() string {
	return string(t)
}
