package domain

import (
	"math"
	"testing"
)

func TestRoundToOneDecimal(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"zero", 0, 0},
		{"round-up", 3.75, 3.8},
		{"round-down", 2.74, 2.7},
		{"exact", 4.5, 4.5},
		{"thirds", 11.0 / 3.0, 3.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundToOneDecimal(tt.value)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Fatalf("RoundToOneDecimal(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormattedAverage(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{0, "0.0"},
		{4, "4.0"},
		{(5 + 4 + 3) / 3.0, "4.0"},
		{(5 + 4) / 2.0, "4.5"},
		{(5 + 4 + 4) / 3.0, "4.3"},
	}
	for _, tt := range tests {
		if got := (RatingSummary{Average: tt.avg}).FormattedAverage(); got != tt.want {
			t.Fatalf("FormattedAverage(%v) = %q, want %q", tt.avg, got, tt.want)
		}
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		max       int
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", "", 50, 1, 10},
		{"explicit", "3", "25", 50, 3, 25},
		{"capped", "1", "500", 50, 1, 50},
		{"review cap", "2", "30", 20, 2, 20},
		{"garbage", "abc", "x", 50, 1, 10},
		{"non-positive", "0", "-4", 50, 1, 10},
		{"negative page", "-2", "5", 50, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.page, tt.limit, tt.max)
			if p.Number != tt.wantPage || p.Limit != tt.wantLimit {
				t.Fatalf("NewPage(%q,%q,%d) = %+v, want page %d limit %d", tt.page, tt.limit, tt.max, p, tt.wantPage, tt.wantLimit)
			}
			if p.Offset() != (tt.wantPage-1)*tt.wantLimit {
				t.Fatalf("Offset() = %d", p.Offset())
			}
		})
	}
}

func TestPaginateConsistency(t *testing.T) {
	for total := int64(0); total <= 23; total++ {
		for limit := 1; limit <= 7; limit++ {
			wantPages := int(math.Ceil(float64(total) / float64(limit)))
			last := wantPages
			if last == 0 {
				last = 1
			}
			for page := 1; page <= last; page++ {
				p := Paginate(Page{Number: page, Limit: limit}, total)
				if p.TotalPages != wantPages {
					t.Fatalf("total=%d limit=%d page=%d: TotalPages=%d want %d", total, limit, page, p.TotalPages, wantPages)
				}
				if p.HasNext != (page < wantPages) {
					t.Fatalf("total=%d limit=%d page=%d: HasNext=%v", total, limit, page, p.HasNext)
				}
				if p.HasPrev != (page > 1) {
					t.Fatalf("total=%d limit=%d page=%d: HasPrev=%v", total, limit, page, p.HasPrev)
				}
			}
		}
	}
}
