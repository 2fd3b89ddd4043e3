package entity

// Notification is a formatted message for a chat sink. Text is always set;
// Blocks carry an optional rich layout for sinks that support it.
type Notification struct {
	Text   string
	Blocks []Block
}

type Block struct {
	Type   string      `json:"type"`
	Text   *BlockText  `json:"text,omitempty"`
	Fields []BlockText `json:"fields,omitempty"`
}

type BlockText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}
