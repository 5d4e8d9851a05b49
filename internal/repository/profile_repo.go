// Package repository holds the raw SQL access layer for influencer
// profiles.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
)

// Sort keys the list endpoint accepts, mapped to their columns. Sorting
// is always descending: the dashboard wants the best first.
var sortColumns = map[string]string{
	"inma_score":    "inma_score",
	"subscribers":   "subscribers",
	"avg_views":     "avg_views",
	"last_analyzed": "last_analyzed",
}

// ValidSortKeys reports which sort keys the API accepts.
var ValidSortKeys = map[string]bool{
	"inma_score":    true,
	"subscribers":   true,
	"avg_views":     true,
	"last_analyzed": true,
}

// DefaultSortKey orders by score when the request does not say otherwise.
const DefaultSortKey = "inma_score"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	DefaultOutreachLimit = 100
	MaxOutreachLimit     = 1000

	topSegments = 5
)

const profileColumns = `channel_id, title, description, email, subscribers,
	avg_views, upload_cycle_days, keywords, inma_score, last_analyzed`

// ListParams filters and pages the profile directory.
type ListParams struct {
	Page     int
	Limit    int
	MinScore float64
	Category string
	Search   string
	SortBy   string
}

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Upsert writes a qualified profile, replacing any previous analysis of
// the same channel.
func (r *ProfileRepo) Upsert(ctx context.Context, p model.ChannelProfile) error {
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO influencer_profiles
			(channel_id, title, description, email, subscribers, avg_views,
			 upload_cycle_days, keywords, inma_score, last_analyzed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (channel_id) DO UPDATE SET
			title             = EXCLUDED.title,
			description       = EXCLUDED.description,
			email             = EXCLUDED.email,
			subscribers       = EXCLUDED.subscribers,
			avg_views         = EXCLUDED.avg_views,
			upload_cycle_days = EXCLUDED.upload_cycle_days,
			keywords          = EXCLUDED.keywords,
			inma_score        = EXCLUDED.inma_score,
			last_analyzed     = EXCLUDED.last_analyzed`,
		p.ID, p.Title, p.Description, p.Email, p.Stats.Subscribers, p.Stats.AvgViews,
		p.Stats.UploadCycleDays, keywords, p.InmaScore, p.LastAnalyzed,
	)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.ID, err)
	}
	return nil
}

// FindByID returns one profile. Callers check pgx.ErrNoRows themselves.
func (r *ProfileRepo) FindByID(ctx context.Context, channelID string) (*model.ChannelProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM influencer_profiles
		WHERE channel_id = $1`, channelID)

	var p model.ChannelProfile
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Email, &p.Stats.Subscribers,
		&p.Stats.AvgViews, &p.Stats.UploadCycleDays, &p.Keywords,
		&p.InmaScore, &p.LastAnalyzed,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of profiles plus the total row count for the
// same filters.
func (r *ProfileRepo) List(ctx context.Context, params ListParams) ([]model.ChannelProfile, int64, error) {
	where, args, orderBy, limit, offset := buildListQuery(params)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM influencer_profiles `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+profileColumns+`
		FROM influencer_profiles %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		where, orderBy, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.ChannelProfile{}
	for rows.Next() {
		var p model.ChannelProfile
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Email, &p.Stats.Subscribers,
			&p.Stats.AvgViews, &p.Stats.UploadCycleDays, &p.Keywords,
			&p.InmaScore, &p.LastAnalyzed,
		); err != nil {
			return nil, 0, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, total, rows.Err()
}

// Stats aggregates the directory: totals, average score, contactable
// count, freshest analysis, and the top keyword segments.
func (r *ProfileRepo) Stats(ctx context.Context) (*model.DirectoryStats, error) {
	var stats model.DirectoryStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(AVG(inma_score), 0),
			COUNT(*) FILTER (WHERE email <> ''),
			MAX(last_analyzed)
		FROM influencer_profiles`).Scan(
		&stats.TotalInfluencers, &stats.AvgScore, &stats.WithEmail, &stats.LastAnalyzed,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT kw, COUNT(*) AS total
		FROM influencer_profiles, unnest(keywords) AS kw
		GROUP BY kw
		ORDER BY total DESC, kw
		LIMIT $1`, topSegments)
	if err != nil {
		return nil, fmt.Errorf("keyword segments: %w", err)
	}
	defer rows.Close()

	stats.Segments = []model.KeywordSegment{}
	for rows.Next() {
		var seg model.KeywordSegment
		if err := rows.Scan(&seg.Name, &seg.Value); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		stats.Segments = append(stats.Segments, seg)
	}
	return &stats, rows.Err()
}

// OutreachTargets returns contactable profiles at or above minScore,
// best first.
func (r *ProfileRepo) OutreachTargets(ctx context.Context, limit int, minScore float64) ([]model.OutreachTarget, error) {
	if limit <= 0 {
		limit = DefaultOutreachLimit
	}
	if limit > MaxOutreachLimit {
		limit = MaxOutreachLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT email, title, inma_score
		FROM influencer_profiles
		WHERE email <> '' AND inma_score >= $1
		ORDER BY inma_score DESC
		LIMIT $2`, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("outreach targets: %w", err)
	}
	defer rows.Close()

	targets := []model.OutreachTarget{}
	for rows.Next() {
		var t model.OutreachTarget
		if err := rows.Scan(&t.Email, &t.Title, &t.InmaScore); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// buildListQuery assembles the WHERE clause, ordered args, ORDER BY
// column, and normalized paging for List. Pure so it can be tested
// without a database.
func buildListQuery(params ListParams) (where string, args []any, orderBy string, limit, offset int) {
	var conds []string

	if params.MinScore > 0 {
		args = append(args, params.MinScore)
		conds = append(conds, fmt.Sprintf("inma_score >= $%d", len(args)))
	}
	if params.Category != "" && params.Category != "All" {
		args = append(args, "%"+params.Category+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE kw ILIKE $%d) OR title ILIKE $%d OR description ILIKE $%d)",
			n, n, n))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR email ILIKE $%d)",
			n, n, n))
	}

	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[DefaultSortKey]
	}
	orderBy = column + " DESC"

	limit = params.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	offset = (page - 1) * limit
	return where, args, orderBy, limit, offset
}
