package sync

// Status classifies one connection's sync outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Result is the per-connection outcome of a sync pass. One entry is emitted
// per connection regardless of individual failures.
type Result struct {
	AccountID      int64  `json:"account_id"`
	UserID         string `json:"user_id"`
	Provider       string `json:"provider"`
	Status         Status `json:"status"`
	Count          int    `json:"count"`
	AggregatedDays int    `json:"aggregated_days,omitempty"`
	Error          string `json:"error,omitempty"`
}
