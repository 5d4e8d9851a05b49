package model

import "time"

// ChannelCandidate is a channel surfaced by keyword search. It lives only
// for the duration of one session page, until the filter chain and the
// activity scorer decide its fate.
type ChannelCandidate struct {
	ID               string
	Title            string
	Description      string
	Email            string
	SubscriberCount  int64
	VideoCount       int64
	TotalViewCount   int64
	UploadFeedHandle string
}

// VideoSample is one recent upload pulled from a channel's upload feed,
// newest first.
type VideoSample struct {
	ID          string
	ChannelID   string
	Title       string
	PublishedAt time.Time
}

// VideoStats holds the per-video counters used for engagement math.
type VideoStats struct {
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
}

// ActivityMetrics are the intermediate signals the scorer derives from a
// candidate's recent uploads.
type ActivityMetrics struct {
	RecencyScore          float64
	AvgUploadIntervalDays float64
	EngagementRatePercent float64
	ConsistencyMultiplier float64
}
