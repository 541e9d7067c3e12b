// Package randcheck defines request and verdict types shared by the detector and its clients.
package randcheck

import (
	"fmt"
	"strings"
)

// Request is a request to check a text for random typing.
type Request struct {
	Text      string  `json:"text"`      // text to check
	Threshold float64 `json:"threshold"` // min ratio of random words to flag the text, 0 means default
}

// WordRequest is a request to check a single word.
type WordRequest struct {
	Word string `json:"word"`
}

func (r *Request) String() string {
	return fmt.Sprintf("text:%q, threshold:%.2f", r.Text, r.Threshold)
}

// Response is a result of a single rule applied to a word.
type Response struct {
	Name    string `json:"name"`    // name of the rule
	Random  bool   `json:"random"`  // true if the rule flagged the word as random
	Details string `json:"details"` // details of the rule outcome
}

func (r *Response) String() string {
	verdict := "ok"
	if r.Random {
		verdict = "random"
	}
	return fmt.Sprintf("%s: %s, %s", r.Name, verdict, r.Details)
}

// Stats is the bigram evidence collected for a word. Empty if the word was decided before bigram analysis.
type Stats struct {
	Bigrams           int      `json:"bigrams"`            // total number of bigrams
	Uncommon          int      `json:"uncommon"`           // number of uncommon bigrams
	Distinct          int      `json:"distinct"`           // number of distinct bigrams
	UncommonRatio     float64  `json:"uncommon_ratio"`     // uncommon / total
	DuplicatedRatio   float64  `json:"duplicated_ratio"`   // (total - distinct) / total
	UncommonThreshold float64  `json:"uncommon_threshold"` // effective uncommon ratio threshold for the word length
	UncommonBigrams   []string `json:"uncommon_bigrams,omitempty"`
}

// Word is a verdict for a single token with the evidence produced on the way.
type Word struct {
	Word   string     `json:"word"`   // lower-cased word
	Random bool       `json:"random"` // final verdict
	Rule   string     `json:"rule"`   // name of the rule made the decision
	Checks []Response `json:"checks"` // all evaluated rules, in precedence order
	Stats  Stats      `json:"stats"`
}

func (w *Word) String() string {
	return fmt.Sprintf("%q %s by %s %s", w.Word, verdictStr(w.Random), w.Rule, ChecksToString(w.Checks))
}

// Result is a verdict for a whole text.
type Result struct {
	Random    bool    `json:"random"`    // true if ratio >= threshold
	Flagged   int     `json:"flagged"`   // number of random words
	Total     int     `json:"total"`     // number of words
	Ratio     float64 `json:"ratio"`     // flagged / total, 0 for empty text
	Threshold float64 `json:"threshold"` // threshold used
	Words     []Word  `json:"words"`
}

func (r *Result) String() string {
	return fmt.Sprintf("%s, %d/%d words, ratio %.2f/%.2f", verdictStr(r.Random), r.Flagged, r.Total, r.Ratio, r.Threshold)
}

// ChecksToString converts a slice of rule responses to a string
func ChecksToString(checks []Response) string {
	elems := []string{}
	for _, r := range checks {
		elems = append(elems, "{"+r.String()+"}")
	}
	return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
}

func verdictStr(random bool) string {
	if random {
		return "random"
	}
	return "meaningful"
}
