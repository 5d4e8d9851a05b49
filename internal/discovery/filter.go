package discovery

import (
	"strings"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
)

// DefaultBlacklist lists the topics excluded from outreach. A candidate
// whose title or description contains any of these terms is dropped
// before anything else is checked.
var DefaultBlacklist = []string{
	"도박", "코인", "주식", "정치", "가상화폐",
	"토토", "홀덤", "카지노", "FX", "성인", "19금",
}

const (
	// DefaultMinSubscribers is the audience floor. Exactly this many passes.
	DefaultMinSubscribers = 1000
	// DefaultMinVideos is the catalog floor. Exactly this many passes.
	DefaultMinVideos = 5

	contextBonus = 10.0
)

// Rejection reasons reported by the filter chain and the scorer. They
// label metrics and log lines.
const (
	RejectBlacklist      = "blacklist"
	RejectMinSubscribers = "min_subscribers"
	RejectMinVideos      = "min_videos"
	RejectNoDescription  = "no_description"
	RejectNoUploads      = "no_uploads"
	RejectDormant        = "dormant"
	RejectNoStats        = "no_stats"
	RejectLowEngagement  = "low_engagement"
	RejectFetchFailed    = "fetch_failed"
)

// FilterChain applies the hard qualification gates and computes the soft
// context bonus. Matching is plain substring over title plus description,
// case-sensitive, no normalization.
type FilterChain struct {
	blacklist      []string
	minSubscribers int64
	minVideos      int64
}

// NewFilterChain builds a chain from job overrides. An empty blacklist
// and non-positive floors select the defaults.
func NewFilterChain(blacklist []string, minSubscribers, minVideos int64) *FilterChain {
	if len(blacklist) == 0 {
		blacklist = DefaultBlacklist
	}
	if minSubscribers <= 0 {
		minSubscribers = DefaultMinSubscribers
	}
	if minVideos <= 0 {
		minVideos = DefaultMinVideos
	}
	return &FilterChain{
		blacklist:      blacklist,
		minSubscribers: minSubscribers,
		minVideos:      minVideos,
	}
}

// Evaluate runs the gates in order: blacklist, subscriber floor, video
// floor, description presence. A non-empty reject reason means the
// candidate is discarded regardless of any other quality. The returned
// bonus is added to the final score when the context keyword appears in
// the candidate's text; it can never rescue a failed gate.
func (f *FilterChain) Evaluate(c model.ChannelCandidate, contextKeyword string) (bonus float64, reject string) {
	text := c.Title + " " + c.Description
	for _, term := range f.blacklist {
		if strings.Contains(text, term) {
			return 0, RejectBlacklist
		}
	}
	if c.SubscriberCount < f.minSubscribers {
		return 0, RejectMinSubscribers
	}
	if c.VideoCount < f.minVideos {
		return 0, RejectMinVideos
	}
	if strings.TrimSpace(c.Description) == "" {
		return 0, RejectNoDescription
	}
	if contextKeyword != "" && strings.Contains(text, contextKeyword) {
		bonus = contextBonus
	}
	return bonus, ""
}
