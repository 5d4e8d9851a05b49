package model

import "time"

// ChannelProfile is the persisted record of a channel that survived the
// full qualification pipeline. One row per channel; re-discovery under a
// different keyword overwrites the previous analysis.
type ChannelProfile struct {
	ID           string       `json:"channel_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Email        string       `json:"email,omitempty"`
	Stats        ProfileStats `json:"stats"`
	Keywords     []string     `json:"keywords"`
	InmaScore    float64      `json:"inma_score"`
	LastAnalyzed time.Time    `json:"last_analyzed"`
}

// ProfileStats holds the audience and cadence numbers surfaced on the
// dashboard next to the score.
type ProfileStats struct {
	Subscribers     int64   `json:"subscribers"`
	AvgViews        int64   `json:"avg_views"`
	UploadCycleDays float64 `json:"upload_cycle_days"`
}

// ProfileListResponse is one page of the profile directory.
type ProfileListResponse struct {
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Items []ChannelProfile `json:"items"`
}

// DirectoryStats is the aggregate view over all stored profiles.
type DirectoryStats struct {
	TotalInfluencers int64            `json:"total_influencers"`
	AvgScore         float64          `json:"avg_score"`
	WithEmail        int64            `json:"with_email"`
	LastAnalyzed     *time.Time       `json:"last_analyzed,omitempty"`
	Segments         []KeywordSegment `json:"segments"`
}

// KeywordSegment is one slice of the keyword distribution chart.
type KeywordSegment struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// OutreachTarget is a contactable profile ordered by score.
type OutreachTarget struct {
	Email     string  `json:"email"`
	Title     string  `json:"title"`
	InmaScore float64 `json:"inma_score"`
}
