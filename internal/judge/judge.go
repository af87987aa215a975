package judge

import (
	"encoding/json"
	"math"
	"strings"
)

// Justification records why a completion received its rating.
type Justification struct {
	PosHits  []string `json:"pos_hits"`
	NegHits  []string `json:"neg_hits"`
	LenWords int      `json:"len_words"`
}

// Verdict is the outcome of judging a single completion.
type Verdict struct {
	Rating        int
	Justification Justification
}

// Score rates text on a 1..5 scale from keyword hits. Positive-only hits rate
// 5, negative-only 1, mixed hits interpolate around 3 by hit balance. With no
// hits at all the rating falls back to a length heuristic.
func Score(text string, kw Keywords) Verdict {
	lower := strings.ToLower(text)

	var pos, neg []string
	for _, k := range kw.Positive {
		if strings.Contains(lower, k) {
			pos = append(pos, k)
		}
	}
	for _, k := range kw.Negative {
		if strings.Contains(lower, k) {
			neg = append(neg, k)
		}
	}

	words := len(strings.Fields(text))
	rating := 0
	switch {
	case len(pos) > 0 && len(neg) == 0:
		rating = 5
	case len(neg) > 0 && len(pos) == 0:
		rating = 1
	case len(pos) > 0 && len(neg) > 0:
		balance := float64(len(pos)-len(neg)) / float64(len(pos)+len(neg))
		rating = clampRating(int(math.Round(3 + 2*balance)))
	default:
		if words >= 8 && words <= 200 {
			rating = 3
		} else {
			rating = 2
		}
	}

	return Verdict{
		Rating:        rating,
		Justification: Justification{PosHits: pos, NegHits: neg, LenWords: words},
	}
}

func clampRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

// JSON renders the justification for storage in a table cell.
func (j Justification) JSON() string {
	b, err := json.Marshal(j)
	if err != nil {
		return "{}"
	}
	return string(b)
}
