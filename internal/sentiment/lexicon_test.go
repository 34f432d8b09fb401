package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexicon_Polarity(t *testing.T) {
	lex := NewLexicon()

	tests := []struct {
		name string
		text string
		sign int
	}{
		{"placeholder growth headline", "Positive growth expected for TCS.NS", 1},
		{"placeholder earnings headline", "TCS.NS beats earnings", 1},
		{"negative headline", "Shares plunge after profit warning and debt concerns", -1},
		{"negated positive", "Company fails to beat estimates", -1},
		{"no lexicon words", "Board meeting scheduled on Tuesday", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := lex.Polarity(tt.text)
			switch tt.sign {
			case 1:
				assert.Greater(t, p, 0.0)
			case -1:
				assert.Less(t, p, 0.0)
			default:
				assert.Equal(t, 0.0, p)
			}
			assert.GreaterOrEqual(t, p, -1.0)
			assert.LessOrEqual(t, p, 1.0)
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hal", "ns", "beats", "q", "earnings"}, tokenize("HAL.NS beats Q3 earnings!"))
}
