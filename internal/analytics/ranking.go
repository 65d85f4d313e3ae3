package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// LowerID orders user ids by their canonical string form.
func LowerID(a, b uuid.UUID) bool {
	return a.String() < b.String()
}

// DailyLoser picks the user with the most breaks; ties go to the lowest user
// id. ok is false when nobody has a break.
func DailyLoser(counts []UserCount) (loser UserCount, ok bool) {
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		if !ok || c.Count > loser.Count || (c.Count == loser.Count && LowerID(c.UserID, loser.UserID)) {
			loser = c
			ok = true
		}
	}
	return loser, ok
}

// MonthlyRollup counts, per user, the daily stats of monthStart's month they
// lost. Stats of other months or groups are ignored.
func MonthlyRollup(groupID uuid.UUID, monthStart time.Time, daily []DailyStat) []MonthlyStat {
	month := MonthStart(monthStart)
	losses := make(map[uuid.UUID]int)
	for _, d := range daily {
		if d.GroupID != groupID || !MonthStart(d.StatDate).Equal(month) {
			continue
		}
		losses[d.LoserUserID]++
	}

	out := make([]MonthlyStat, 0, len(losses))
	for userID, n := range losses {
		out = append(out, MonthlyStat{
			UserID:      userID,
			GroupID:     groupID,
			MonthStart:  month,
			LossesCount: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return LowerID(out[i].UserID, out[j].UserID)
	})
	return out
}
