package middleware

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Input limits. Channel IDs match the influencer_profiles.channel_id key;
// the rest bound query strings and discovery run requests.
const (
	MaxChannelIDLen = 64
	MaxQueryLen     = 200 // category and search terms
	MaxKeywordLen   = 100
	MaxKeywords     = 20

	MaxPerKeywordTarget = 50
	MaxRunConcurrency   = 10
)

// channelIDRe matches YouTube channel IDs: alphanumeric, dash, underscore.
var channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateChannelID checks that a channel ID is well-formed.
func ValidateChannelID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "channel_id is required"
	}
	if len(id) > MaxChannelIDLen {
		return "", "channel_id must be at most 64 characters"
	}
	if !channelIDRe.MatchString(id) {
		return "", "channel_id contains invalid characters"
	}
	return id, ""
}

// ValidatePage parses the page query param. Empty means the first page.
func ValidatePage(raw string) (int, string) {
	if raw == "" {
		return 1, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, "page must be a positive integer"
	}
	return n, ""
}

// ValidateLimit parses a result-count query param. Empty means def;
// values above max are clamped rather than rejected.
func ValidateLimit(raw string, def, max int) (int, string) {
	if raw == "" {
		return def, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, "limit must be a positive integer"
	}
	if n > max {
		n = max
	}
	return n, ""
}

// ValidateMinScore parses the min_score query param. Empty means no floor.
func ValidateMinScore(raw string) (float64, string) {
	if raw == "" {
		return 0, ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, "min_score must be a non-negative number"
	}
	return f, ""
}

// SanitizeQuery trims and truncates a free-text query param (category,
// search). These feed ILIKE patterns, so length is the only concern.
func SanitizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > MaxQueryLen {
		q = q[:MaxQueryLen]
	}
	return q
}

// ValidateKeywords trims a discovery keyword list and drops empty
// entries. An empty result is fine; the server defaults apply then.
func ValidateKeywords(keywords []string) ([]string, string) {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if len(kw) > MaxKeywordLen {
			return nil, "keywords entries must be at most 100 characters"
		}
		out = append(out, kw)
	}
	if len(out) > MaxKeywords {
		return nil, fmt.Sprintf("at most %d keywords per run", MaxKeywords)
	}
	return out, ""
}

// ValidatePerKeywordTarget bounds the qualified-channel goal per keyword.
// Zero means the configured default.
func ValidatePerKeywordTarget(n int) (int, string) {
	if n < 0 {
		return 0, "per_keyword_target must not be negative"
	}
	if n > MaxPerKeywordTarget {
		return 0, fmt.Sprintf("per_keyword_target must be at most %d", MaxPerKeywordTarget)
	}
	return n, ""
}

// ValidateConcurrency bounds the session pool width. Zero means the
// configured default.
func ValidateConcurrency(n int) (int, string) {
	if n < 0 {
		return 0, "concurrency must not be negative"
	}
	if n > MaxRunConcurrency {
		return 0, fmt.Sprintf("concurrency must be at most %d", MaxRunConcurrency)
	}
	return n, ""
}
