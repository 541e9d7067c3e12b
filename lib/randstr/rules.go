package randstr

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/umputun/randstr/lib/randcheck"
)

const minWordLen = 4

// length-adaptive uncommon ratio thresholds, longer words naturally have more rare bigrams
const (
	longWordLen            = 10
	longWordUncommonRatio  = 0.15
	xlongWordLen           = 12
	xlongWordUncommonRatio = 0.20
)

// rule is a single step of word classification.
// A rule either decides the verdict or passes the word to the next rule in the chain.
type rule func(w token) verdict

type verdict struct {
	resp    randcheck.Response
	decided bool
	stats   randcheck.Stats
}

// token is a lower-cased word with precomputed character classes.
type token struct {
	text   string
	runes  []rune
	alpha  bool // letters only
	digits bool // digits only
}

func newToken(s string) token {
	res := token{text: strings.ToLower(s)}
	res.runes = []rune(res.text)
	res.alpha, res.digits = len(res.runes) > 0, len(res.runes) > 0
	for _, r := range res.runes {
		if !unicode.IsLetter(r) {
			res.alpha = false
		}
		if !unicode.IsDigit(r) {
			res.digits = false
		}
	}
	return res
}

func pass(name, details string) verdict {
	return verdict{resp: randcheck.Response{Name: name, Random: false, Details: details}}
}

func decide(name string, random bool, details string) verdict {
	return verdict{resp: randcheck.Response{Name: name, Random: random, Details: details}, decided: true}
}

// lengthRule never flags words shorter than minWordLen.
func lengthRule(w token) verdict {
	if len(w.runes) < minWordLen {
		return decide("length", false, fmt.Sprintf("too short, %d/%d chars", len(w.runes), minWordLen))
	}
	return pass("length", fmt.Sprintf("%d chars", len(w.runes)))
}

// alphabetRule never flags words with non-letters, used when numbers are not allowed.
func alphabetRule(w token) verdict {
	if !w.alpha {
		return decide("alphabet", false, "non-alphabetic")
	}
	return pass("alphabet", "letters only")
}

// digitsRule flags pure numbers, used when numbers are allowed.
func digitsRule(w token) verdict {
	if w.digits {
		return decide("digits", true, "digits only")
	}
	return pass("digits", "not digits only")
}

// repeatedRule flags a single character repeated over the whole word.
func repeatedRule(w token) verdict {
	distinct := map[rune]struct{}{}
	for _, r := range w.runes {
		distinct[r] = struct{}{}
	}
	if len(distinct) == 1 {
		return decide("repeated", true, fmt.Sprintf("single character %q", w.runes[0]))
	}
	return pass("repeated", fmt.Sprintf("%d distinct chars", len(distinct)))
}

// keyboardRule flags letter-only words matching keyboard or alphabet sequences.
func keyboardRule(w token) verdict {
	if !w.alpha {
		return pass("keyboard", "not alphabetic, skipped")
	}
	if match, ok := keyboardMatch(w.text); ok {
		return decide("keyboard", true, match)
	}
	return pass("keyboard", "no pattern")
}

// bigramsRule decides by ratios of uncommon and duplicated bigrams. Always makes a decision.
func (d *Detector) bigramsRule(w token) verdict {
	if len(w.runes) < 2 {
		return decide("bigrams", false, "not enough bigrams") // can't happen after length rule
	}

	total := len(w.runes) - 1
	distinct := make(map[string]struct{}, total)
	stats := randcheck.Stats{Bigrams: total, UncommonThreshold: d.uncommonThreshold(len(w.runes))}
	for i := range total {
		bg := string(w.runes[i : i+2])
		distinct[bg] = struct{}{}
		if d.isUncommon(bg, i, w) {
			stats.Uncommon++
			stats.UncommonBigrams = append(stats.UncommonBigrams, bg)
		}
	}
	stats.Distinct = len(distinct)
	stats.UncommonRatio = float64(stats.Uncommon) / float64(total)
	stats.DuplicatedRatio = float64(total-stats.Distinct) / float64(total)

	details := fmt.Sprintf("uncommon %.2f/%.2f, duplicated %.2f/%.2f",
		stats.UncommonRatio, stats.UncommonThreshold, stats.DuplicatedRatio, d.cfg.DuplicatedRatio)
	random := stats.UncommonRatio > stats.UncommonThreshold || stats.DuplicatedRatio > d.cfg.DuplicatedRatio
	v := decide("bigrams", random, details)
	v.stats = stats
	return v
}

// isUncommon checks a bigram at position pos of the word. With numbers allowed, bigrams with anything
// but letters go to alphanumeric heuristics, as the reference tables know nothing about digits.
func (d *Detector) isUncommon(bg string, pos int, w token) bool {
	if d.cfg.AllowNumbers && !isLetters(bg) {
		random, _ := alnumBigramVerdict(pos, w.runes)
		return random
	}
	return d.cfg.Bigrams.Freq(bg) <= d.cfg.CommonThreshold
}

// uncommonThreshold returns uncommon ratio threshold relaxed for long words.
// A configured threshold looser than the length-adaptive one is kept as is.
func (d *Detector) uncommonThreshold(wordLen int) float64 {
	switch {
	case wordLen >= xlongWordLen:
		return max(d.cfg.UncommonRatio, xlongWordUncommonRatio)
	case wordLen >= longWordLen:
		return max(d.cfg.UncommonRatio, longWordUncommonRatio)
	}
	return d.cfg.UncommonRatio
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
