package discovery

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
)

// DirectoryClient is the platform capability the pipeline consumes.
// Implementations batch, retry, and rate-limit internally; a returned
// error means the call is unrecoverable for this batch.
type DirectoryClient interface {
	// SearchChannelIDs returns one page of channel IDs for a keyword,
	// most-viewed first, plus the token for the next page ("" when the
	// result set is exhausted).
	SearchChannelIDs(ctx context.Context, keyword, pageToken string) (ids []string, nextPageToken string, err error)
	// ListChannels resolves IDs to candidates in batched calls. IDs the
	// platform no longer knows, or items with unusable fields, are simply
	// absent from the result.
	ListChannels(ctx context.Context, ids []string) ([]model.ChannelCandidate, error)
	// ListRecentUploads returns up to maxResults of a channel's newest
	// uploads, feed order preserved.
	ListRecentUploads(ctx context.Context, uploadFeedHandle string, maxResults int) ([]model.VideoSample, error)
	// ListVideoStats resolves video IDs to their counters. Videos the
	// platform returns nothing for are absent from the map.
	ListVideoStats(ctx context.Context, videoIDs []string) (map[string]model.VideoStats, error)
}

// QuotaReporter is implemented by clients that meter their API quota
// spend. The orchestrator sums the spend across workers when available.
type QuotaReporter interface {
	QuotaUsed() int64
}

// ProfileStore persists qualified profiles. Upsert must be idempotent on
// the profile's channel ID.
type ProfileStore interface {
	Upsert(ctx context.Context, p model.ChannelProfile) error
}

// DiscardStore drops every profile. It stands in for the database when
// persistence is disabled.
type DiscardStore struct{}

func (DiscardStore) Upsert(context.Context, model.ChannelProfile) error { return nil }

// MaxSearchPages caps how deep a session pages into one keyword's search
// results before giving up on reaching its target.
const MaxSearchPages = 20

// SessionConfig wires one keyword session. Zero-valued knobs select the
// defaults.
type SessionConfig struct {
	Keyword        string
	ContextKeyword string
	Target         int
	MaxPages       int
	SampleSize     int

	Client  DirectoryClient
	Filters *FilterChain
	Scorer  *ActivityScorer
	Store   ProfileStore
	Dedup   *DedupSet
	Logger  zerolog.Logger
}

// Session drives one keyword's paginated discovery loop: search a page,
// claim unseen IDs against the shared dedup set, fetch candidate details
// in one batch, then filter, score, and persist survivors.
type Session struct {
	cfg SessionConfig
}

func NewSession(cfg SessionConfig) *Session {
	if cfg.Target <= 0 {
		cfg.Target = DefaultPerKeywordTarget
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = MaxSearchPages
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	cfg.Logger = cfg.Logger.With().Str("keyword", cfg.Keyword).Logger()
	return &Session{cfg: cfg}
}

// Run executes the session until the target is met, the results run dry,
// or the page budget is spent. It returns the qualified profiles in
// discovery order. A failed search ends the session gracefully with the
// profiles gathered so far; only context cancellation surfaces as an
// error.
func (s *Session) Run(ctx context.Context) ([]model.ChannelProfile, error) {
	var qualified []model.ChannelProfile
	pageToken := ""

	for page := 1; page <= s.cfg.MaxPages && len(qualified) < s.cfg.Target; page++ {
		if err := ctx.Err(); err != nil {
			return qualified, err
		}

		ids, next, err := s.cfg.Client.SearchChannelIDs(ctx, s.cfg.Keyword, pageToken)
		if err != nil {
			s.cfg.Logger.Warn().Err(err).Int("page", page).Msg("search failed, ending session")
			return qualified, nil
		}
		if len(ids) == 0 {
			break
		}

		// Claim before fetching details so overlapping sessions never pay
		// the batch cost for the same channel twice.
		fresh := make([]string, 0, len(ids))
		for _, id := range ids {
			if s.cfg.Dedup.Claim(id) {
				fresh = append(fresh, id)
			}
		}

		if len(fresh) > 0 {
			candidates, err := s.cfg.Client.ListChannels(ctx, fresh)
			if err != nil {
				s.cfg.Logger.Warn().Err(err).Int("page", page).Int("ids", len(fresh)).
					Msg("channel batch dropped")
			} else {
				for i := range candidates {
					if len(qualified) >= s.cfg.Target {
						break
					}
					if p, ok := s.evaluate(ctx, candidates[i]); ok {
						qualified = append(qualified, p)
					}
				}
			}
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	return qualified, nil
}

// evaluate runs one candidate through the filter chain and, if it
// survives, the deep activity analysis. It reports whether the candidate
// qualified. Persistence failures are logged and counted but do not
// disqualify: the profile still ships in the session result.
func (s *Session) evaluate(ctx context.Context, c model.ChannelCandidate) (model.ChannelProfile, bool) {
	Metrics.CandidatesTotal.Inc()

	bonus, reject := s.cfg.Filters.Evaluate(c, s.cfg.ContextKeyword)
	if reject != "" {
		s.reject(c.ID, reject)
		return model.ChannelProfile{}, false
	}

	if c.UploadFeedHandle == "" {
		s.reject(c.ID, RejectNoUploads)
		return model.ChannelProfile{}, false
	}

	samples, err := s.cfg.Client.ListRecentUploads(ctx, c.UploadFeedHandle, s.cfg.SampleSize)
	if err != nil {
		s.cfg.Logger.Warn().Err(err).Str("channel", c.ID).Msg("uploads fetch failed")
		s.reject(c.ID, RejectFetchFailed)
		return model.ChannelProfile{}, false
	}

	stats := map[string]model.VideoStats{}
	if len(samples) > 0 {
		ids := make([]string, len(samples))
		for i, v := range samples {
			ids[i] = v.ID
		}
		stats, err = s.cfg.Client.ListVideoStats(ctx, ids)
		if err != nil {
			s.cfg.Logger.Warn().Err(err).Str("channel", c.ID).Msg("video stats fetch failed")
			s.reject(c.ID, RejectFetchFailed)
			return model.ChannelProfile{}, false
		}
	}

	res, reject := s.cfg.Scorer.Score(c, samples, stats, bonus)
	if reject != "" {
		s.reject(c.ID, reject)
		return model.ChannelProfile{}, false
	}

	profile := s.cfg.Scorer.BuildProfile(c, res)
	if err := s.cfg.Store.Upsert(ctx, profile); err != nil {
		Metrics.UpsertFailures.Inc()
		s.cfg.Logger.Error().Err(err).Str("channel", c.ID).Msg("profile upsert failed")
	} else {
		Metrics.ProfilesUpserted.Inc()
	}

	s.cfg.Logger.Info().
		Str("channel", c.ID).
		Str("title", c.Title).
		Float64("score", profile.InmaScore).
		Float64("engagement", res.Metrics.EngagementRatePercent).
		Msg("channel qualified")
	return profile, true
}

func (s *Session) reject(channelID, reason string) {
	Metrics.RejectionsTotal.WithLabelValues(reason).Inc()
	s.cfg.Logger.Debug().Str("channel", channelID).Str("reason", reason).Msg("candidate rejected")
}
