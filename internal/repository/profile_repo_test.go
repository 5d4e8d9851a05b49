package repository

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildListQuery_NoFilters(t *testing.T) {
	where, args, orderBy, limit, offset := buildListQuery(ListParams{})

	if where != "" {
		t.Errorf("where = %q, want empty", where)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
	if orderBy != "inma_score DESC" {
		t.Errorf("orderBy = %q, want inma_score DESC", orderBy)
	}
	if limit != DefaultPageLimit {
		t.Errorf("limit = %d, want default %d", limit, DefaultPageLimit)
	}
	if offset != 0 {
		t.Errorf("offset = %d, want 0", offset)
	}
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	where, args, _, _, _ := buildListQuery(ListParams{
		MinScore: 40,
		Category: "패션",
		Search:   "협찬",
	})

	want := "WHERE inma_score >= $1 AND " +
		"(EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE kw ILIKE $2) OR title ILIKE $2 OR description ILIKE $2) AND " +
		"(title ILIKE $3 OR description ILIKE $3 OR email ILIKE $3)"
	if where != want {
		t.Errorf("where = %q\nwant   %q", where, want)
	}
	wantArgs := []any{40.0, "%패션%", "%협찬%"}
	if diff := cmp.Diff(wantArgs, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildListQuery_CategoryAllMeansNoFilter(t *testing.T) {
	where, args, _, _, _ := buildListQuery(ListParams{Category: "All"})
	if where != "" || len(args) != 0 {
		t.Errorf("category All should not filter, got where=%q args=%v", where, args)
	}
}

func TestBuildListQuery_ZeroMinScoreMeansNoFilter(t *testing.T) {
	where, _, _, _, _ := buildListQuery(ListParams{MinScore: 0})
	if where != "" {
		t.Errorf("zero min score should not filter, got %q", where)
	}
}

func TestBuildListQuery_SortKeys(t *testing.T) {
	tests := []struct {
		sortBy string
		want   string
	}{
		{"inma_score", "inma_score DESC"},
		{"subscribers", "subscribers DESC"},
		{"avg_views", "avg_views DESC"},
		{"last_analyzed", "last_analyzed DESC"},
		{"", "inma_score DESC"},
		{"drop table", "inma_score DESC"}, // unknown keys fall back, never interpolate
	}

	for _, tt := range tests {
		_, _, orderBy, _, _ := buildListQuery(ListParams{SortBy: tt.sortBy})
		if orderBy != tt.want {
			t.Errorf("sortBy %q: orderBy = %q, want %q", tt.sortBy, orderBy, tt.want)
		}
	}
}

func TestBuildListQuery_Paging(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, DefaultPageLimit, 0},
		{"page three", 3, 20, 20, 40},
		{"limit capped", 1, 500, MaxPageLimit, 0},
		{"negative page", -2, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, limit, offset := buildListQuery(ListParams{Page: tt.page, Limit: tt.limit})
			if limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", limit, tt.wantLimit)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}
}

func TestValidSortKeys_MatchColumns(t *testing.T) {
	for key := range ValidSortKeys {
		if _, ok := sortColumns[key]; !ok {
			t.Errorf("sort key %q has no column mapping", key)
		}
	}
	for key := range sortColumns {
		if !ValidSortKeys[key] {
			t.Errorf("column mapping %q is not a valid sort key", key)
		}
	}
}
