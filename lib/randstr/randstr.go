// Package randstr detects random typing ("asdfgh", "gdkgag", "x9y8z7w6") in short texts like
// usernames, form fields and chat messages. It uses no trained model, only statistics over
// character bigrams and a few structural heuristics, so every verdict can be explained.
//
// The primary type is Detector, made with New from a Config. Detector is immutable and safe
// for concurrent use.
//
// A single word is classified by an ordered chain of rules, the first rule with an opinion decides:
//
//   - length: words shorter than 4 characters are never random.
//   - alphabet: with Config.AllowNumbers off, words with any non-letter are never random.
//   - digits: with Config.AllowNumbers on, words made of digits only are always random.
//   - repeated: a single character repeated ("aaaaa") is random.
//   - keyboard: letter-only words matching a known keyboard or alphabet sequence are random.
//   - bigrams: the word is random if the share of uncommon bigrams or the share of duplicated
//     bigrams is above the configured ratio. Uncommon means the bigram frequency in Config.Bigrams
//     is not above Config.CommonThreshold. With numbers allowed, bigrams with a digit or a separator
//     are judged by IsLikelyRandomAlphanumericBigram instead of the table.
//
// A text is split on whitespace, each word classified, and the text is random if the ratio of random
// words is equal or above the threshold. Empty text is never random.
//
// Thresholds are not validated, keeping them in a sane 0.0 - 1.0 range is the caller's responsibility.
package randstr

import (
	"strings"

	"github.com/umputun/randstr/lib/bigrams"
	"github.com/umputun/randstr/lib/randcheck"
)

// DefaultThreshold is the ratio of random words to all words making a text random.
const DefaultThreshold = 0.5

// Detector classifies words and texts as random typing, thread-safe.
type Detector struct {
	cfg   Config
	rules []rule
}

// Config is a set of parameters for Detector.
type Config struct {
	Bigrams         bigrams.Table // reference bigram frequencies, English if empty
	CommonThreshold float64       // bigram frequency above which a bigram counts as common
	UncommonRatio   float64       // ratio of uncommon bigrams above which a word is random
	DuplicatedRatio float64       // ratio of duplicated bigrams above which a word is random
	AllowNumbers    bool          // if true, digits and separators are allowed in words
}

// DefaultConfig returns config with English bigrams and default thresholds.
func DefaultConfig() Config {
	return Config{
		Bigrams:         bigrams.English(),
		CommonThreshold: 0.1,
		UncommonRatio:   0.1,
		DuplicatedRatio: 0.33,
		AllowNumbers:    false,
	}
}

// New makes a Detector for the given config. Empty bigram table replaced by English.
func New(cfg Config) *Detector {
	if cfg.Bigrams.Len() == 0 {
		cfg.Bigrams = bigrams.English()
	}
	res := &Detector{cfg: cfg}

	// the order of rules defines precedence, first decided rule wins
	res.rules = []rule{lengthRule}
	if cfg.AllowNumbers {
		res.rules = append(res.rules, digitsRule)
	} else {
		res.rules = append(res.rules, alphabetRule)
	}
	res.rules = append(res.rules, repeatedRule, keyboardRule, res.bigramsRule)
	return res
}

// Config returns a copy of the detector's config.
func (d *Detector) Config() Config { return d.cfg }

// IsRandom checks if the text is random typing with DefaultThreshold.
func (d *Detector) IsRandom(text string) bool {
	return d.Detect(text, DefaultThreshold)
}

// Detect checks if the ratio of random words in the text is equal or above the threshold.
func (d *Detector) Detect(text string, threshold float64) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return false
	}
	flagged := 0
	for _, w := range words {
		if d.IsRandomWord(w) {
			flagged++
		}
	}
	return float64(flagged)/float64(len(words)) >= threshold
}

// Check is the same as Detect but also returns per-word verdicts with evidence.
func (d *Detector) Check(text string, threshold float64) randcheck.Result {
	res := randcheck.Result{Threshold: threshold, Words: []randcheck.Word{}}
	for _, token := range strings.Fields(strings.ToLower(text)) {
		w := d.CheckWord(token)
		if w.Random {
			res.Flagged++
		}
		res.Total++
		res.Words = append(res.Words, w)
	}
	if res.Total == 0 {
		return res // no content is never random
	}
	res.Ratio = float64(res.Flagged) / float64(res.Total)
	res.Random = res.Ratio >= threshold
	return res
}

// IsRandomWord checks if a single word is random typing.
func (d *Detector) IsRandomWord(word string) bool {
	return d.CheckWord(word).Random
}

// CheckWord classifies a single word and returns the verdict with all evaluated rules.
func (d *Detector) CheckWord(word string) randcheck.Word {
	w := newToken(word)
	res := randcheck.Word{Word: w.text}
	for _, r := range d.rules {
		v := r(w)
		res.Checks = append(res.Checks, v.resp)
		if v.decided {
			res.Random = v.resp.Random
			res.Rule = v.resp.Name
			res.Stats = v.stats
			return res
		}
	}
	return res
}
