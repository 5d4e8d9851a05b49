// Package youtube implements the DirectoryClient contract against the
// YouTube Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/discovery"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/pkg/extract"
)

// Quota units charged per call type. Search is two orders of magnitude
// more expensive than list calls, which is why the pipeline searches for
// bare IDs and batches everything else.
const (
	costSearch = 100
	costList   = 1
)

const (
	defaultBaseURL  = "https://www.googleapis.com/youtube/v3"
	defaultRegion   = "KR"
	defaultLanguage = "ko"

	searchPageSize = 50
	maxBatchIDs    = 50
	maxPageSize    = 50

	requestTimeout = 10 * time.Second
	defaultRPS     = 5.0
	retryAttempts  = 3
	retryDelay     = 200 * time.Millisecond
	retryJitterCap = 100 * time.Millisecond
)

// HTTPError is a non-2xx API response, kept for retry classification and
// logging.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.StatusCode)
	}
	return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Message)
}

// Client is one worker's handle on the Data API. Clients issued by the
// same Factory share a rate limiter because quota is per project, not per
// worker. Each client meters its own quota spend.
type Client struct {
	apiKey   string
	baseURL  string
	region   string
	language string
	hc       *http.Client
	limiter  *rate.Limiter
	log      zerolog.Logger
	quota    atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithRateLimiter shares a limiter across clients.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRegion overrides the search region and relevance language.
func WithRegion(region, language string) Option {
	return func(c *Client) {
		c.region = region
		c.language = language
	}
}

// WithLogger attaches a logger for retry visibility.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// NewClient builds a Data API client. A missing key is a ConfigError:
// nothing in the pipeline works without one.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, &discovery.ConfigError{Field: "YOUTUBE_API_KEY", Reason: "not set"}
	}
	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		region:   defaultRegion,
		language: defaultLanguage,
		hc:       &http.Client{Timeout: requestTimeout},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Limit(defaultRPS), int(math.Ceil(defaultRPS)))
	}
	return c, nil
}

// QuotaUsed reports the units this client has charged so far, counting
// every attempt including retries.
func (c *Client) QuotaUsed() int64 { return c.quota.Load() }

// Factory mints per-worker clients that share one rate limiter.
type Factory struct {
	apiKey  string
	limiter *rate.Limiter
	opts    []Option
}

// NewFactory validates the key once and fixes the project-wide request
// rate. rps at or below zero selects the default.
func NewFactory(apiKey string, rps float64, opts ...Option) (*Factory, error) {
	if apiKey == "" {
		return nil, &discovery.ConfigError{Field: "YOUTUBE_API_KEY", Reason: "not set"}
	}
	if rps <= 0 {
		rps = defaultRPS
	}
	return &Factory{
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(rps), int(math.Ceil(rps))),
		opts:    opts,
	}, nil
}

// NewDirectoryClient satisfies discovery.ClientFactory.
func (f *Factory) NewDirectoryClient() (discovery.DirectoryClient, error) {
	opts := append([]Option{WithRateLimiter(f.limiter)}, f.opts...)
	return NewClient(f.apiKey, opts...)
}

// SearchChannelIDs requests one page of channel search results for a
// keyword, most-viewed first, and returns the bare channel IDs.
func (c *Client) SearchChannelIDs(ctx context.Context, keyword, pageToken string) ([]string, string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", keyword)
	params.Set("type", "channel")
	params.Set("order", "viewCount")
	params.Set("maxResults", strconv.Itoa(searchPageSize))
	params.Set("regionCode", c.region)
	params.Set("relevanceLanguage", c.language)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp searchResponse
	if err := c.call(ctx, "search", params, costSearch, &resp); err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.ChannelID == "" {
			c.skipItem("search_result", "", "id.channelId")
			continue
		}
		ids = append(ids, item.ID.ChannelID)
	}
	return ids, resp.NextPageToken, nil
}

// ListChannels resolves channel IDs to candidates, splitting the input
// into API-sized groups. A group that still fails after retries is
// dropped so the rest of the page survives; the call errors only when
// every group failed.
func (c *Client) ListChannels(ctx context.Context, ids []string) ([]model.ChannelCandidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var (
		out      []model.ChannelCandidate
		firstErr error
		failed   int
		groups   int
	)
	for start := 0; start < len(ids); start += maxBatchIDs {
		end := start + maxBatchIDs
		if end > len(ids) {
			end = len(ids)
		}
		groups++

		params := url.Values{}
		params.Set("part", "snippet,contentDetails,statistics")
		params.Set("id", strings.Join(ids[start:end], ","))

		var resp channelListResponse
		if err := c.call(ctx, "channels", params, costList, &resp); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			failed++
			c.log.Warn().Err(err).Int("ids", end-start).Msg("channel group dropped")
			continue
		}
		for _, item := range resp.Items {
			cand, err := mapChannel(item)
			if err != nil {
				c.skipItem("channel", item.ID, err.Error())
				continue
			}
			out = append(out, cand)
		}
	}
	if failed == groups {
		return nil, firstErr
	}
	return out, nil
}

// ListRecentUploads returns up to maxResults of the newest uploads in a
// channel's upload feed, in feed order.
func (c *Client) ListRecentUploads(ctx context.Context, uploadFeedHandle string, maxResults int) ([]model.VideoSample, error) {
	if uploadFeedHandle == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = discovery.DefaultSampleSize
	}
	if maxResults > maxPageSize {
		maxResults = maxPageSize
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("playlistId", uploadFeedHandle)
	params.Set("maxResults", strconv.Itoa(maxResults))

	var resp playlistItemsResponse
	if err := c.call(ctx, "playlistItems", params, costList, &resp); err != nil {
		return nil, err
	}

	samples := make([]model.VideoSample, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails.VideoID == "" {
			c.skipItem("playlist_item", "", "contentDetails.videoId")
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			c.skipItem("playlist_item", item.ContentDetails.VideoID, "snippet.publishedAt")
			continue
		}
		samples = append(samples, model.VideoSample{
			ID:          item.ContentDetails.VideoID,
			ChannelID:   item.Snippet.ChannelID,
			Title:       item.Snippet.Title,
			PublishedAt: publishedAt,
		})
	}
	return samples, nil
}

// ListVideoStats resolves video IDs to their counters. Videos the API
// does not return, or returns with corrupt counters, are absent from the
// map.
func (c *Client) ListVideoStats(ctx context.Context, videoIDs []string) (map[string]model.VideoStats, error) {
	if len(videoIDs) == 0 {
		return map[string]model.VideoStats{}, nil
	}

	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(videoIDs, ","))

	var resp videoListResponse
	if err := c.call(ctx, "videos", params, costList, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]model.VideoStats, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID == "" {
			c.skipItem("video", "", "id")
			continue
		}
		views, err := parseCount(item.Statistics.ViewCount)
		if err != nil {
			c.skipItem("video", item.ID, "statistics.viewCount")
			continue
		}
		likes, err := parseCount(item.Statistics.LikeCount)
		if err != nil {
			c.skipItem("video", item.ID, "statistics.likeCount")
			continue
		}
		comments, err := parseCount(item.Statistics.CommentCount)
		if err != nil {
			c.skipItem("video", item.ID, "statistics.commentCount")
			continue
		}
		out[item.ID] = model.VideoStats{
			ViewCount:    views,
			LikeCount:    likes,
			CommentCount: comments,
		}
	}
	return out, nil
}

// mapChannel turns one API item into a candidate, extracting the first
// contact emails from the description. A missing ID or a corrupt counter
// makes the item unusable; a missing uploads playlist does not, since the
// session rejects that case on its own.
func mapChannel(item channelItem) (model.ChannelCandidate, error) {
	if item.ID == "" {
		return model.ChannelCandidate{}, &discovery.DataIncompleteError{Kind: "channel", Field: "id"}
	}
	subscribers, err := parseCount(item.Statistics.SubscriberCount)
	if err != nil {
		return model.ChannelCandidate{}, &discovery.DataIncompleteError{Kind: "channel", ID: item.ID, Field: "statistics.subscriberCount"}
	}
	videos, err := parseCount(item.Statistics.VideoCount)
	if err != nil {
		return model.ChannelCandidate{}, &discovery.DataIncompleteError{Kind: "channel", ID: item.ID, Field: "statistics.videoCount"}
	}
	views, err := parseCount(item.Statistics.ViewCount)
	if err != nil {
		return model.ChannelCandidate{}, &discovery.DataIncompleteError{Kind: "channel", ID: item.ID, Field: "statistics.viewCount"}
	}
	return model.ChannelCandidate{
		ID:               item.ID,
		Title:            item.Snippet.Title,
		Description:      item.Snippet.Description,
		Email:            strings.Join(extract.Emails(item.Snippet.Description), ", "),
		SubscriberCount:  subscribers,
		VideoCount:       videos,
		TotalViewCount:   views,
		UploadFeedHandle: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

// parseCount reads a string counter. The API omits counters it hides
// (private subscriber counts, disabled likes); absent means zero, while a
// present but non-numeric value marks the item corrupt.
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func (c *Client) skipItem(kind, id, field string) {
	discovery.Metrics.IncompleteItems.WithLabelValues(kind).Inc()
	c.log.Debug().Str("kind", kind).Str("id", id).Str("field", field).Msg("incomplete item skipped")
}

// call performs one API request with rate limiting and bounded retry,
// decoding the body into out. Quota is charged per attempt: a retried
// request costs real units every time.
func (c *Client) call(ctx context.Context, resource string, params url.Values, cost int64, out any) error {
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "/" + resource + "?" + params.Encode()

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			c.quota.Add(cost)
			discovery.Metrics.QuotaUnits.WithLabelValues(resource).Add(float64(cost))

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			resp, err := c.hc.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode != http.StatusOK {
				return nil, &HTTPError{StatusCode: resp.StatusCode, Message: apiErrorMessage(data)}
			}
			return data, nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.MaxJitter(retryJitterCap),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			c.log.Debug().Err(err).Uint("attempt", attempt+1).Str("call", resource).Msg("retrying api call")
		}),
	)
	if err != nil {
		return &discovery.TransientFetchError{Op: resource, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &discovery.TransientFetchError{Op: resource, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// isRetryable keeps retries for rate limiting, server errors, and plain
// network failures. Client-side mistakes (bad key, bad request, quota
// exhausted for the day) fail fast.
func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func apiErrorMessage(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return ""
	}
	return apiErr.Error.Message
}
