package model

import "time"

// DiscoveryRunRequest is the trigger payload for POST /api/discovery/run.
// Zero-valued fields fall back to the server's configured defaults.
type DiscoveryRunRequest struct {
	Keywords         []string `json:"keywords"`
	ContextKeyword   string   `json:"context_keyword"`
	PerKeywordTarget int      `json:"per_keyword_target"`
	Concurrency      int      `json:"concurrency"`
}

// RunStatus reports whether a discovery run is active and summarizes the
// most recent completed one.
type RunStatus struct {
	Running bool        `json:"running"`
	LastRun *RunSummary `json:"last_run,omitempty"`
}

// RunSummary is the durable record of one finished discovery run.
type RunSummary struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Keywords   []string         `json:"keywords"`
	Profiles   int              `json:"profiles"`
	QuotaUnits int64            `json:"quota_units"`
	Outcomes   []KeywordOutcome `json:"outcomes"`
	Error      string           `json:"error,omitempty"`
}

// KeywordOutcome is one keyword session's result inside a run summary.
type KeywordOutcome struct {
	Keyword   string `json:"keyword"`
	Qualified int    `json:"qualified"`
	Error     string `json:"error,omitempty"`
}
