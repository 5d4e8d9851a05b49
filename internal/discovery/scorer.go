package discovery

import (
	"math"
	"time"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/pkg/extract"
)

// Scoring thresholds and weights. Day arithmetic floors to whole days, so
// a channel becomes dormant at 366 full days, not 365.
const (
	DefaultSampleSize = 5

	dormantDays  = 365
	staleDays    = 180
	stalePenalty = 0.5

	defaultUploadIntervalDays = 30.0

	minEngagementPercent = 2.0
	engagementWeight     = 10.0

	weeklyIntervalDays   = 7
	biweeklyIntervalDays = 14
	weeklyMultiplier     = 1.5
	biweeklyMultiplier   = 1.2

	maxProfileKeywords = 10
)

// ActivityScorer turns a candidate's recent uploads into a final ranking
// score. Samples must arrive newest first; the scorer trusts the feed
// order and does not re-sort.
type ActivityScorer struct {
	now func() time.Time
}

func NewActivityScorer() *ActivityScorer {
	return &ActivityScorer{now: time.Now}
}

// ScoreResult carries everything a session needs to build a profile from
// a candidate that passed scoring.
type ScoreResult struct {
	Metrics    model.ActivityMetrics
	AvgViews   float64
	FinalScore float64
	Keywords   []string
}

// Score evaluates one candidate that already cleared the filter chain.
// A non-empty reject reason means the candidate is discarded; checks
// short-circuit in order: upload presence, dormancy, stats presence,
// engagement floor.
//
// final = engagement × 10 × consistency × recency + bonus
func (s *ActivityScorer) Score(c model.ChannelCandidate, samples []model.VideoSample, stats map[string]model.VideoStats, bonus float64) (ScoreResult, string) {
	if len(samples) == 0 {
		return ScoreResult{}, RejectNoUploads
	}

	latest := samples[0].PublishedAt
	sinceUpload := daysBetween(latest, s.now())
	if sinceUpload > dormantDays {
		return ScoreResult{}, RejectDormant
	}
	recency := 1.0
	if sinceUpload > staleDays {
		recency = stalePenalty
	}

	interval := defaultUploadIntervalDays
	if len(samples) > 1 {
		total := 0
		for i := 0; i < len(samples)-1; i++ {
			total += daysBetween(samples[i+1].PublishedAt, samples[i].PublishedAt)
		}
		interval = float64(total) / float64(len(samples)-1)
	}

	var totalViews int64
	withStats := 0
	for _, v := range samples {
		st, ok := stats[v.ID]
		if !ok {
			continue
		}
		totalViews += st.ViewCount
		withStats++
	}
	if withStats == 0 {
		return ScoreResult{}, RejectNoStats
	}
	avgViews := float64(totalViews) / float64(withStats)

	engagement := 0.0
	if c.SubscriberCount > 0 {
		engagement = avgViews / float64(c.SubscriberCount) * 100
	}
	if engagement < minEngagementPercent {
		return ScoreResult{}, RejectLowEngagement
	}

	consistency := 1.0
	switch {
	case interval <= weeklyIntervalDays:
		consistency = weeklyMultiplier
	case interval <= biweeklyIntervalDays:
		consistency = biweeklyMultiplier
	}

	titles := make([]string, len(samples))
	for i, v := range samples {
		titles[i] = v.Title
	}

	return ScoreResult{
		Metrics: model.ActivityMetrics{
			RecencyScore:          recency,
			AvgUploadIntervalDays: interval,
			EngagementRatePercent: engagement,
			ConsistencyMultiplier: consistency,
		},
		AvgViews:   avgViews,
		FinalScore: engagement*engagementWeight*consistency*recency + bonus,
		Keywords:   extract.Keywords(titles, maxProfileKeywords),
	}, ""
}

// BuildProfile assembles the persisted record for a scored candidate.
// Scores round to two decimals, upload cycles to one, average views
// truncate to whole numbers.
func (s *ActivityScorer) BuildProfile(c model.ChannelCandidate, res ScoreResult) model.ChannelProfile {
	return model.ChannelProfile{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Email:       c.Email,
		Stats: model.ProfileStats{
			Subscribers:     c.SubscriberCount,
			AvgViews:        int64(res.AvgViews),
			UploadCycleDays: math.Round(res.Metrics.AvgUploadIntervalDays*10) / 10,
		},
		Keywords:     res.Keywords,
		InmaScore:    math.Round(res.FinalScore*100) / 100,
		LastAnalyzed: s.now().UTC(),
	}
}

// daysBetween returns the whole days from a to b, flooring partial days.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}
