package words

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var folder = cases.Fold()

// Normalize prepares an answer for comparison: surrounding whitespace is
// dropped, compatibility forms are composed, full/half width and case are
// folded, and katakana is folded to hiragana.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = norm.NFKC.String(text)
	text = width.Fold.String(text)
	text = folder.String(text)
	return foldKana(text)
}

// Matches reports whether guess and answer are equal after normalization.
func Matches(guess, answer string) bool {
	normalizedGuess := Normalize(guess)
	return normalizedGuess != "" && normalizedGuess == Normalize(answer)
}

// Loosely reports whether one normalized text contains the other.
func Loosely(guess, answer string) bool {
	g := Normalize(guess)
	a := Normalize(answer)
	if g == "" || a == "" {
		return false
	}
	return g == a || strings.Contains(g, a) || strings.Contains(a, g)
}

func foldKana(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ァ' && r <= 'ヶ' {
			return r - 0x60
		}
		return r
	}, text)
}
