package leaderboard

import (
	"sort"

	"github.com/google/uuid"
)

// Entry is one member's losses for the ranked period.
type Entry struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	LossesCount int       `json:"losses_count"`
}

type Ranked struct {
	Entry
	Rank     int  `json:"rank"`
	Perfect  bool `json:"perfect"`
	WeakLink bool `json:"weak_link"`
}

// Rank orders entries by ascending losses, then ascending user id. Fewest
// losses ranks first. Only the last entry of a group of two or more is the
// weak link.
func Rank(entries []Entry) []Ranked {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].LossesCount != sorted[j].LossesCount {
			return sorted[i].LossesCount < sorted[j].LossesCount
		}
		return sorted[i].UserID.String() < sorted[j].UserID.String()
	})

	out := make([]Ranked, len(sorted))
	for i, e := range sorted {
		out[i] = Ranked{
			Entry:   e,
			Rank:    i + 1,
			Perfect: e.LossesCount == 0,
		}
	}
	if len(out) > 1 {
		out[len(out)-1].WeakLink = true
	}
	return out
}
