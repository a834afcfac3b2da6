package storage

import "time"

// TokenUsage tracks token consumption reported by the LLM server.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage report into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// UsageRecord is one persisted accounting entry. RunID groups the records
// written by a single process run. Only token counts are stored here;
// conversation content never touches disk.
type UsageRecord struct {
	RunID     string     `json:"run_id"`
	Model     string     `json:"model"`
	Timestamp time.Time  `json:"timestamp"`
	Usage     TokenUsage `json:"usage"`
}

// usageLog is the on-disk shape of usage.json.
type usageLog struct {
	Records []UsageRecord `json:"records"`
}
