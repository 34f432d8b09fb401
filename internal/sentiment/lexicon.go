package sentiment

import (
	"strings"
	"unicode"
)

// Lexicon scores text polarity from word lists. A negator flips the
// polarity of the next scored word within a short window.
type Lexicon struct {
	positive map[string]float64
	negative map[string]float64
	negators map[string]bool
}

// NewLexicon returns the built-in financial headline lexicon
func NewLexicon() *Lexicon {
	return &Lexicon{
		positive: weights(1.0, "positive", "beat", "beats", "beating", "surge", "surges", "soar", "soars",
			"rally", "rallies", "gain", "gains", "growth", "grow", "grows", "profit", "profits",
			"record", "strong", "upgrade", "upgraded", "outperform", "outperforms", "bullish",
			"expand", "expands", "expansion", "rise", "rises", "jump", "jumps", "buy", "win", "wins",
			"boost", "boosts", "optimistic", "robust", "higher", "dividend", "approval", "approved"),
		negative: weights(1.0, "negative", "miss", "misses", "missed", "fall", "falls", "drop", "drops",
			"plunge", "plunges", "slump", "slumps", "loss", "losses", "weak", "downgrade", "downgraded",
			"underperform", "bearish", "decline", "declines", "cut", "cuts", "lawsuit", "probe",
			"fraud", "default", "lower", "sell", "warning", "warns", "concern", "concerns", "risk",
			"layoffs", "penalty", "slowdown", "debt"),
		negators: map[string]bool{
			"not": true, "no": true, "never": true, "without": true, "fails": true, "fail": true,
		},
	}
}

func weights(w float64, words ...string) map[string]float64 {
	m := make(map[string]float64, len(words))
	for _, word := range words {
		m[word] = w
	}
	return m
}

// Polarity returns a score in [-1, 1]; 0 when no lexicon word matches
func (l *Lexicon) Polarity(text string) float64 {
	words := tokenize(text)

	var sum float64
	matched := 0
	negateWindow := 0

	for _, w := range words {
		if l.negators[w] {
			negateWindow = 3
			continue
		}

		score := l.positive[w] - l.negative[w]
		if score != 0 {
			if negateWindow > 0 {
				score = -score
				negateWindow = 0
			}
			sum += score
			matched++
		} else if negateWindow > 0 {
			negateWindow--
		}
	}

	if matched == 0 {
		return 0
	}

	p := sum / float64(matched)
	if p > 1 {
		return 1
	}
	if p < -1 {
		return -1
	}
	return p
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
