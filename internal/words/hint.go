package words

import (
	"math"
	"math/rand/v2"
)

const HintGlyph = '◯'

// Hint masks a fraction of the interior characters of word. The first and
// last characters always stay visible; at least one interior character is
// masked when the word has any. Single characters are shown as is.
func Hint(word string, fraction float64, rng *rand.Rand) string {
	chars := []rune(word)
	switch len(chars) {
	case 0:
		return ""
	case 1:
		return word
	case 2:
		return string([]rune{chars[0], HintGlyph})
	}
	inner := len(chars) - 2
	count := int(math.Ceil(float64(inner) * fraction))
	if count < 1 {
		count = 1
	}
	if count > inner {
		count = inner
	}
	positions := make([]int, inner)
	for i := range positions {
		positions[i] = i + 1
	}
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	for _, idx := range positions[:count] {
		chars[idx] = HintGlyph
	}
	return string(chars)
}
