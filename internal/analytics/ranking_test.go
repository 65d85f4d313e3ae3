package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDailyLoser(t *testing.T) {
	ids := sortedIDs(3)

	tests := []struct {
		name   string
		counts []UserCount
		want   uuid.UUID
		ok     bool
	}{
		{
			name:   "most breaks loses",
			counts: []UserCount{{ids[1], 3}, {ids[0], 1}},
			want:   ids[1],
			ok:     true,
		},
		{
			name:   "tie goes to lowest id",
			counts: []UserCount{{ids[2], 2}, {ids[1], 2}, {ids[0], 1}},
			want:   ids[1],
			ok:     true,
		},
		{
			name:   "zero counts ignored",
			counts: []UserCount{{ids[0], 0}},
			ok:     false,
		},
		{
			name: "empty",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DailyLoser(tt.counts)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got.UserID != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.UserID)
			}
		})
	}
}

func TestDailyLoser_OrderIndependent(t *testing.T) {
	ids := sortedIDs(4)
	counts := []UserCount{{ids[3], 5}, {ids[2], 5}, {ids[1], 1}, {ids[0], 4}}

	first, _ := DailyLoser(counts)
	for i := range counts {
		rotated := append(append([]UserCount{}, counts[i:]...), counts[:i]...)
		got, _ := DailyLoser(rotated)
		if got != first {
			t.Fatalf("rotation %d picked %s, expected %s", i, got.UserID, first.UserID)
		}
	}
	if first.UserID != ids[2] {
		t.Fatalf("expected %s, got %s", ids[2], first.UserID)
	}
}

func TestMonthlyRollup_FiveDays(t *testing.T) {
	groupID := uuid.New()
	a, b := uuid.New(), uuid.New()

	var daily []DailyStat
	for d := 1; d <= 5; d++ {
		daily = append(daily, DailyStat{GroupID: groupID, LoserUserID: a, StatDate: Date(2026, 3, d)})
	}
	daily = append(daily, DailyStat{GroupID: groupID, LoserUserID: b, StatDate: Date(2026, 3, 6)})

	rollup := MonthlyRollup(groupID, Date(2026, 3, 1), daily)
	got := map[uuid.UUID]int{}
	for _, s := range rollup {
		got[s.UserID] = s.LossesCount
	}
	if got[a] != 5 || got[b] != 1 {
		t.Fatalf("unexpected rollup %v", got)
	}
}

// ------------------------------------------------------------
// Calendar
// ------------------------------------------------------------

func TestClosedDays_Grace(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		latest time.Time
	}{
		{"inside grace", time.Date(2026, 3, 15, 0, 5, 0, 0, time.UTC), Date(2026, 3, 13)},
		{"after grace", time.Date(2026, 3, 15, 0, 15, 0, 0, time.UTC), Date(2026, 3, 14)},
		{"midday", time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), Date(2026, 3, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := ClosedDays(tt.now, time.UTC, 3, 10*time.Minute)
			if len(days) != 3 {
				t.Fatalf("expected 3 days, got %d", len(days))
			}
			if !days[2].Equal(tt.latest) {
				t.Fatalf("expected latest %v, got %v", tt.latest, days[2])
			}
			if !days[0].Equal(tt.latest.AddDate(0, 0, -2)) {
				t.Fatalf("days not oldest first: %v", days)
			}
		})
	}
}

func TestClosedDays_TimeZone(t *testing.T) {
	minus5 := time.FixedZone("UTC-5", -5*60*60)
	// 03:00 UTC on the 15th is still the 14th at UTC-5.
	now := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)

	days := ClosedDays(now, minus5, 1, 0)
	if !days[0].Equal(Date(2026, 3, 13)) {
		t.Fatalf("expected the 13th, got %v", days[0])
	}
}

func TestDayBounds(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	from, to := DayBounds(Date(2026, 3, 15), plus3)

	if !from.Equal(time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", from.UTC())
	}
	if to.Sub(from) != 24*time.Hour {
		t.Fatalf("unexpected day length %v", to.Sub(from))
	}
	if !DateOf(from, plus3).Equal(Date(2026, 3, 15)) {
		t.Fatalf("DateOf disagrees with DayBounds")
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2026-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Equal(Date(2026, 2, 1)) || !MonthEnd(m).Equal(Date(2026, 2, 28)) {
		t.Fatalf("unexpected month bounds %v..%v", m, MonthEnd(m))
	}

	for _, bad := range []string{"", "2026-13", "2026/02", "March"} {
		if _, err := ParseMonth(bad); !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("%q: expected ErrInvalidMonth, got %v", bad, err)
		}
	}
}
