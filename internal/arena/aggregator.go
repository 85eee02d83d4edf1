package arena

import (
	"sort"

	"github.com/ahrav/go-arena/internal/domain"
)

// Aggregate combines per-judge rankings into a leaderboard ordered by
// average rank. Positions are 1-based; a participant absent from a
// judge's ranking simply receives no vote from that judge, so its
// average is taken only over the judges that ranked it. Participants
// with zero votes are excluded from the leaderboard entirely. Reports
// whose extraction failed are counted as skipped and contribute
// nothing.
//
// Ordering is a strict total order: ascending average rank, then
// descending vote count, then ascending participant name. Equal inputs
// therefore always produce identical output.
func Aggregate(reports []domain.JudgeReport, participants []string) domain.Leaderboard {
	type tally struct {
		sum   int
		votes int
	}

	tallies := make(map[string]*tally, len(participants))
	counted := 0
	skipped := 0

	for _, report := range reports {
		if !report.Valid() {
			skipped++
			continue
		}
		counted++
		for pos, name := range report.Ranking {
			t, ok := tallies[name]
			if !ok {
				t = &tally{}
				tallies[name] = t
			}
			t.sum += pos + 1
			t.votes++
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(participants))
	for _, name := range participants {
		t, ok := tallies[name]
		if !ok || t.votes == 0 {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			Name:        name,
			AverageRank: float64(t.sum) / float64(t.votes),
			Votes:       t.votes,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AverageRank != entries[j].AverageRank {
			return entries[i].AverageRank < entries[j].AverageRank
		}
		if entries[i].Votes != entries[j].Votes {
			return entries[i].Votes > entries[j].Votes
		}
		return entries[i].Name < entries[j].Name
	})

	return domain.Leaderboard{
		Entries:       entries,
		JudgesCounted: counted,
		JudgesSkipped: skipped,
	}
}
