package discovery

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
)

var scorerNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testScorer() *ActivityScorer {
	return &ActivityScorer{now: func() time.Time { return scorerNow }}
}

// samplesAt builds uploads newest-first at the given day offsets from the
// pinned clock.
func samplesAt(daysAgo ...int) []model.VideoSample {
	out := make([]model.VideoSample, len(daysAgo))
	for i, d := range daysAgo {
		out[i] = model.VideoSample{
			ID:          fmt.Sprintf("vid-%d", i),
			Title:       fmt.Sprintf("패션 브이로그 %d", i),
			PublishedAt: scorerNow.AddDate(0, 0, -d),
		}
	}
	return out
}

// uniformStats gives every sample the same view count.
func uniformStats(samples []model.VideoSample, views int64) map[string]model.VideoStats {
	out := make(map[string]model.VideoStats, len(samples))
	for _, s := range samples {
		out[s.ID] = model.VideoStats{ViewCount: views}
	}
	return out
}

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestActivityScorer_NoUploads(t *testing.T) {
	_, reject := testScorer().Score(candidate("패션", "옷", 5000, 50), nil, nil, 0)
	if reject != RejectNoUploads {
		t.Errorf("reject = %q, want %q", reject, RejectNoUploads)
	}
}

func TestActivityScorer_DormancyBoundary(t *testing.T) {
	scorer := testScorer()
	c := candidate("패션", "옷", 5000, 50)

	samples := samplesAt(366)
	if _, reject := scorer.Score(c, samples, uniformStats(samples, 500), 0); reject != RejectDormant {
		t.Errorf("366 days since upload: reject = %q, want %q", reject, RejectDormant)
	}

	samples = samplesAt(365)
	res, reject := scorer.Score(c, samples, uniformStats(samples, 500), 0)
	if reject != "" {
		t.Fatalf("365 days since upload should pass dormancy, got reject %q", reject)
	}
	if res.Metrics.RecencyScore != 0.5 {
		t.Errorf("recency = %.2f, want 0.50 (older than 180 days)", res.Metrics.RecencyScore)
	}
}

func TestActivityScorer_RecencyBoundary(t *testing.T) {
	scorer := testScorer()
	c := candidate("패션", "옷", 5000, 50)

	samples := samplesAt(180)
	res, reject := scorer.Score(c, samples, uniformStats(samples, 500), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if res.Metrics.RecencyScore != 1.0 {
		t.Errorf("180 days: recency = %.2f, want 1.00", res.Metrics.RecencyScore)
	}

	samples = samplesAt(181)
	res, reject = scorer.Score(c, samples, uniformStats(samples, 500), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if res.Metrics.RecencyScore != 0.5 {
		t.Errorf("181 days: recency = %.2f, want 0.50", res.Metrics.RecencyScore)
	}
}

func TestActivityScorer_DefaultIntervalForSingleUpload(t *testing.T) {
	samples := samplesAt(10)
	res, reject := testScorer().Score(candidate("패션", "옷", 5000, 50), samples, uniformStats(samples, 500), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if res.Metrics.AvgUploadIntervalDays != 30.0 {
		t.Errorf("interval = %.1f, want 30.0 (default when no gaps)", res.Metrics.AvgUploadIntervalDays)
	}
	if res.Metrics.ConsistencyMultiplier != 1.0 {
		t.Errorf("consistency = %.1f, want 1.0", res.Metrics.ConsistencyMultiplier)
	}
}

func TestActivityScorer_IntervalMean(t *testing.T) {
	// Gaps of 6, 6, 6, 6 days.
	samples := samplesAt(2, 8, 14, 20, 26)
	res, reject := testScorer().Score(candidate("패션", "옷", 5000, 50), samples, uniformStats(samples, 500), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if res.Metrics.AvgUploadIntervalDays != 6.0 {
		t.Errorf("interval = %.1f, want 6.0", res.Metrics.AvgUploadIntervalDays)
	}
}

func TestActivityScorer_ConsistencyTiers(t *testing.T) {
	tests := []struct {
		name     string
		daysAgo  []int
		wantMult float64
	}{
		{"weekly cadence", []int{2, 9, 16, 23, 30}, 1.5},     // gaps of 7
		{"biweekly cadence", []int{2, 12, 22, 32, 42}, 1.2},  // gaps of 10
		{"monthly cadence", []int{2, 22, 42, 62, 82}, 1.0},   // gaps of 20
		{"fourteen day gaps", []int{2, 16, 30, 44, 58}, 1.2}, // boundary: 14 is biweekly
		{"fifteen day gaps", []int{2, 17, 32, 47, 62}, 1.0},  // boundary: 15 is not
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := samplesAt(tt.daysAgo...)
			res, reject := testScorer().Score(candidate("패션", "옷", 5000, 50), samples, uniformStats(samples, 500), 0)
			if reject != "" {
				t.Fatalf("unexpected reject %q", reject)
			}
			if res.Metrics.ConsistencyMultiplier != tt.wantMult {
				t.Errorf("consistency = %.1f, want %.1f", res.Metrics.ConsistencyMultiplier, tt.wantMult)
			}
		})
	}
}

func TestActivityScorer_NoStats(t *testing.T) {
	samples := samplesAt(2, 8)
	_, reject := testScorer().Score(candidate("패션", "옷", 5000, 50), samples, map[string]model.VideoStats{}, 0)
	if reject != RejectNoStats {
		t.Errorf("reject = %q, want %q", reject, RejectNoStats)
	}
}

func TestActivityScorer_PartialStatsAverageOverKnown(t *testing.T) {
	samples := samplesAt(2, 8, 14, 20, 26)
	stats := map[string]model.VideoStats{
		samples[0].ID: {ViewCount: 100},
		samples[1].ID: {ViewCount: 300},
	}
	res, reject := testScorer().Score(candidate("패션", "옷", 5000, 50), samples, stats, 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if res.AvgViews != 200.0 {
		t.Errorf("avg views = %.1f, want 200.0 (mean over sampled stats only)", res.AvgViews)
	}
}

func TestActivityScorer_EngagementBoundary(t *testing.T) {
	scorer := testScorer()
	c := candidate("패션", "옷", 10_000, 50)
	samples := samplesAt(2)

	if _, reject := scorer.Score(c, samples, uniformStats(samples, 199), 0); reject != RejectLowEngagement {
		t.Errorf("1.99%% engagement: reject = %q, want %q", reject, RejectLowEngagement)
	}
	if _, reject := scorer.Score(c, samples, uniformStats(samples, 200), 0); reject != "" {
		t.Errorf("2.00%% engagement should pass, got reject %q", reject)
	}
}

func TestActivityScorer_ZeroSubscribersRejected(t *testing.T) {
	samples := samplesAt(2)
	_, reject := testScorer().Score(candidate("패션", "옷", 0, 50), samples, uniformStats(samples, 1_000_000), 0)
	if reject != RejectLowEngagement {
		t.Errorf("reject = %q, want %q (zero subscribers means zero engagement)", reject, RejectLowEngagement)
	}
}

func TestActivityScorer_FinalScoreComposition(t *testing.T) {
	// 150 avg views on 5,000 subscribers = 3.0% engagement; 6-day gaps
	// earn the weekly multiplier; fresh uploads keep recency at 1.0:
	// 3.0 * 10 * 1.5 * 1.0 = 45.0
	samples := samplesAt(2, 8, 14, 20, 26)
	res, reject := testScorer().Score(candidate("패션", "데일리룩", 5000, 50), samples, uniformStats(samples, 150), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if !almostEqual(res.FinalScore, 45.0, 0.0001) {
		t.Errorf("final score = %.4f, want 45.0", res.FinalScore)
	}
}

func TestActivityScorer_ContextBonusAddedAfterMultipliers(t *testing.T) {
	samples := samplesAt(2, 8, 14, 20, 26)
	stats := uniformStats(samples, 150)
	c := candidate("의류 패션", "의류 소개", 5000, 50)

	base, reject := testScorer().Score(c, samples, stats, 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	boosted, reject := testScorer().Score(c, samples, stats, 10)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if !almostEqual(boosted.FinalScore-base.FinalScore, 10.0, 0.0001) {
		t.Errorf("bonus delta = %.4f, want 10.0", boosted.FinalScore-base.FinalScore)
	}
}

func TestActivityScorer_ScoreMonotonicInViews(t *testing.T) {
	samples := samplesAt(2, 8, 14, 20, 26)
	c := candidate("패션", "옷", 5000, 50)

	low, reject := testScorer().Score(c, samples, uniformStats(samples, 150), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	high, reject := testScorer().Score(c, samples, uniformStats(samples, 300), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if high.FinalScore <= low.FinalScore {
		t.Errorf("score should grow with views: %.2f then %.2f", low.FinalScore, high.FinalScore)
	}
}

func TestActivityScorer_KeywordsFromSampleTitles(t *testing.T) {
	samples := samplesAt(2, 8)
	samples[0].Title = "가을 데일리룩 하울"
	samples[1].Title = "데일리룩 꿀템 추천"

	res, reject := testScorer().Score(candidate("패션", "옷", 5000, 50), samples, uniformStats(samples, 500), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	want := []string{"가을", "데일리룩", "하울", "꿀템", "추천"}
	if len(res.Keywords) != len(want) {
		t.Fatalf("keywords = %v, want %v", res.Keywords, want)
	}
	for i, kw := range want {
		if res.Keywords[i] != kw {
			t.Errorf("keywords[%d] = %q, want %q", i, res.Keywords[i], kw)
		}
	}
}

func TestActivityScorer_BuildProfileRounding(t *testing.T) {
	scorer := testScorer()
	// 100 avg views on 3,000 subscribers = 3.333...% engagement; single
	// sample keeps every multiplier at 1.0 so the raw score is 33.333...
	samples := samplesAt(2)
	c := candidate("패션 채널", "데일리룩", 3000, 50)
	c.Email = "biz@example.com"

	res, reject := scorer.Score(c, samples, uniformStats(samples, 100), 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	p := scorer.BuildProfile(c, res)

	if p.ID != c.ID || p.Title != c.Title || p.Email != "biz@example.com" {
		t.Errorf("identity fields not carried over: %+v", p)
	}
	if p.InmaScore != 33.33 {
		t.Errorf("inma score = %.4f, want 33.33 (two decimals)", p.InmaScore)
	}
	if p.Stats.UploadCycleDays != 30.0 {
		t.Errorf("upload cycle = %.2f, want 30.0", p.Stats.UploadCycleDays)
	}
	if p.Stats.Subscribers != 3000 {
		t.Errorf("subscribers = %d, want 3000", p.Stats.Subscribers)
	}
	if p.LastAnalyzed != scorerNow.UTC() {
		t.Errorf("last analyzed = %v, want pinned clock", p.LastAnalyzed)
	}
}

func TestActivityScorer_BuildProfileTruncatesAvgViews(t *testing.T) {
	scorer := testScorer()
	samples := samplesAt(2, 8)
	stats := map[string]model.VideoStats{
		samples[0].ID: {ViewCount: 100},
		samples[1].ID: {ViewCount: 101},
	}
	res, reject := scorer.Score(candidate("패션", "옷", 1000, 50), samples, stats, 0)
	if reject != "" {
		t.Fatalf("unexpected reject %q", reject)
	}
	if res.AvgViews != 100.5 {
		t.Fatalf("avg views = %.2f, want 100.5", res.AvgViews)
	}
	p := scorer.BuildProfile(candidate("패션", "옷", 1000, 50), res)
	if p.Stats.AvgViews != 100 {
		t.Errorf("persisted avg views = %d, want 100 (truncated)", p.Stats.AvgViews)
	}
}
