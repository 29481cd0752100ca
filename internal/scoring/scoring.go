// Package scoring holds the point rules shared by the game rooms.
package scoring

import (
	"math"
	"sort"
)

const (
	GuessBase        = 100
	FirstGuessBonus  = 50
	DrawerFlatBonus  = 50
	AIPenalty        = 30
	InkBonusBase     = 100
	OjamaBase        = 100
	OjamaTimeBonus   = 50
	PointsPerVote    = 100
	maxTimeBonusBase = 100
)

var comboTable = []float64{1.0, 1.2, 1.5, 2.0}

// ComboMultiplier returns the multiplier for a streak of comboCount correct
// guesses. Streaks beyond the table use its last entry.
func ComboMultiplier(comboCount int) float64 {
	if comboCount < 1 {
		return comboTable[0]
	}
	idx := comboCount - 1
	if idx >= len(comboTable) {
		idx = len(comboTable) - 1
	}
	return comboTable[idx]
}

func TimeBonus(remaining, total int) int {
	return scaled(maxTimeBonusBase, remaining, total)
}

type GuessAward struct {
	TimeBonus       int     `json:"timeBonus"`
	ComboMultiplier float64 `json:"comboMultiplier"`
	FirstBonus      int     `json:"firstBonus"`
	TotalEarned     int     `json:"totalEarned"`
}

// GuessReward scores a correct battle guess.
func GuessReward(remaining, total, comboCount int, first bool) GuessAward {
	award := GuessAward{
		TimeBonus:       TimeBonus(remaining, total),
		ComboMultiplier: ComboMultiplier(comboCount),
	}
	if first {
		award.FirstBonus = FirstGuessBonus
	}
	award.TotalEarned = int(math.Round(float64(GuessBase+award.TimeBonus+award.FirstBonus) * award.ComboMultiplier))
	return award
}

// DrawerInkBonus rewards a drawer who beat the AI, scaled by how little ink
// they spent.
func DrawerInkBonus(inkUsed, maxInk float64) int {
	if maxInk <= 0 {
		return InkBonusBase
	}
	usage := inkUsed / maxInk
	if usage > 1 {
		usage = 1
	}
	if usage < 0 {
		usage = 0
	}
	return int(math.Round(InkBonusBase * (1 + (1 - usage))))
}

func OjamaReward(remaining, total int) int {
	return OjamaBase + scaled(OjamaTimeBonus, remaining, total)
}

// TallyVotes converts voter->target ballots into points per target.
func TallyVotes(votes map[string]string) map[string]int {
	out := make(map[string]int)
	for _, target := range votes {
		out[target] += PointsPerVote
	}
	return out
}

func scaled(base, remaining, total int) int {
	if total <= 0 || remaining <= 0 {
		return 0
	}
	if remaining > total {
		remaining = total
	}
	return int(math.Round(float64(base) * float64(remaining) / float64(total)))
}

type Entry struct {
	PlayerID        string  `json:"playerId"`
	Nickname        string  `json:"nickname"`
	Score           int     `json:"score"`
	RoundDelta      int     `json:"roundDelta"`
	TimeBonus       int     `json:"timeBonus,omitempty"`
	ComboMultiplier float64 `json:"comboMultiplier,omitempty"`
	FirstGuesser    bool    `json:"firstGuesser,omitempty"`
}

// Sort orders entries by score descending. Ties keep their input order.
func Sort(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Winner returns the nickname of the top entry of a sorted table.
func Winner(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	return entries[0].Nickname
}
