package llm

// HistoryEntry is a single prior exchange turn sent as model context.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage holds token accounting for one upstream call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ChatResult is the raw model output plus its usage.
type ChatResult struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}
