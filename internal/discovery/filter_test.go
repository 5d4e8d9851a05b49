package discovery

import (
	"testing"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/model"
)

func candidate(title, description string, subs, videos int64) model.ChannelCandidate {
	return model.ChannelCandidate{
		ID:              "UC_test",
		Title:           title,
		Description:     description,
		SubscriberCount: subs,
		VideoCount:      videos,
	}
}

func TestFilterChain_Evaluate(t *testing.T) {
	chain := NewFilterChain(nil, 0, 0)

	tests := []struct {
		name       string
		c          model.ChannelCandidate
		context    string
		wantBonus  float64
		wantReject string
	}{
		{
			name:       "clean channel passes",
			c:          candidate("패션 하울", "데일리룩 소개 채널입니다", 5000, 120),
			context:    "",
			wantBonus:  0,
			wantReject: "",
		},
		{
			name:       "blacklisted term in title",
			c:          candidate("코인 대박 채널", "투자 정보", 2_000_000, 500),
			context:    "",
			wantReject: RejectBlacklist,
		},
		{
			name:       "blacklisted term in description",
			c:          candidate("일상 브이로그", "가끔 주식 이야기도 합니다", 80_000, 300),
			context:    "",
			wantReject: RejectBlacklist,
		},
		{
			name:       "blacklist beats every other gate",
			c:          candidate("홀덤 입문", "", 10, 1),
			context:    "",
			wantReject: RejectBlacklist,
		},
		{
			name:       "999 subscribers rejected",
			c:          candidate("패션", "옷 소개", 999, 50),
			context:    "",
			wantReject: RejectMinSubscribers,
		},
		{
			name:       "exactly 1000 subscribers passes",
			c:          candidate("패션", "옷 소개", 1000, 50),
			context:    "",
			wantReject: "",
		},
		{
			name:       "4 videos rejected",
			c:          candidate("패션", "옷 소개", 5000, 4),
			context:    "",
			wantReject: RejectMinVideos,
		},
		{
			name:       "exactly 5 videos passes",
			c:          candidate("패션", "옷 소개", 5000, 5),
			context:    "",
			wantReject: "",
		},
		{
			name:       "empty description rejected",
			c:          candidate("패션 채널", "", 5000, 50),
			context:    "",
			wantReject: RejectNoDescription,
		},
		{
			name:       "whitespace-only description rejected",
			c:          candidate("패션 채널", "   \n\t ", 5000, 50),
			context:    "",
			wantReject: RejectNoDescription,
		},
		{
			name:      "context keyword in title earns bonus",
			c:         candidate("의류 리뷰", "옷 입어보기", 5000, 50),
			context:   "의류",
			wantBonus: 10,
		},
		{
			name:      "context keyword in description earns bonus",
			c:         candidate("패션 채널", "의류 브랜드 협찬 환영", 5000, 50),
			context:   "의류",
			wantBonus: 10,
		},
		{
			name:      "absent context keyword earns nothing",
			c:         candidate("패션 채널", "옷 소개", 5000, 50),
			context:   "의류",
			wantBonus: 0,
		},
		{
			name:      "empty context keyword earns nothing",
			c:         candidate("패션 채널", "옷 소개", 5000, 50),
			context:   "",
			wantBonus: 0,
		},
		{
			name:       "context match cannot rescue a failed gate",
			c:          candidate("의류 전문", "의류 채널", 10, 50),
			context:    "의류",
			wantReject: RejectMinSubscribers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bonus, reject := chain.Evaluate(tt.c, tt.context)
			if reject != tt.wantReject {
				t.Errorf("reject = %q, want %q", reject, tt.wantReject)
			}
			if reject == "" && bonus != tt.wantBonus {
				t.Errorf("bonus = %.1f, want %.1f", bonus, tt.wantBonus)
			}
		})
	}
}

func TestFilterChain_CaseSensitiveMatching(t *testing.T) {
	chain := NewFilterChain(nil, 0, 0)

	// The denylist carries "FX" in caps; a lowercase mention is a
	// different string and passes.
	bonus, reject := chain.Evaluate(candidate("fx 편집 강좌", "영상 편집 팁", 5000, 50), "")
	if reject != "" {
		t.Fatalf("lowercase fx should pass, got reject %q", reject)
	}
	if bonus != 0 {
		t.Fatalf("bonus = %.1f, want 0", bonus)
	}

	if _, reject := chain.Evaluate(candidate("FX 마진거래", "투자", 5000, 50), ""); reject != RejectBlacklist {
		t.Fatalf("uppercase FX should be rejected, got %q", reject)
	}
}

func TestFilterChain_Overrides(t *testing.T) {
	chain := NewFilterChain([]string{"먹방"}, 10_000, 20)

	if _, reject := chain.Evaluate(candidate("먹방 채널", "맛집 소개", 50_000, 100), ""); reject != RejectBlacklist {
		t.Errorf("custom blacklist term should reject, got %q", reject)
	}
	// Default denylist is replaced wholesale by the override.
	if _, reject := chain.Evaluate(candidate("코인 채널", "투자 소개", 50_000, 100), ""); reject != "" {
		t.Errorf("default terms should not apply with an override, got %q", reject)
	}
	if _, reject := chain.Evaluate(candidate("패션", "옷", 9_999, 100), ""); reject != RejectMinSubscribers {
		t.Errorf("raised subscriber floor should reject, got %q", reject)
	}
	if _, reject := chain.Evaluate(candidate("패션", "옷", 50_000, 19), ""); reject != RejectMinVideos {
		t.Errorf("raised video floor should reject, got %q", reject)
	}
}
