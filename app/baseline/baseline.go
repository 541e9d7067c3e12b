// Package baseline measures detector accuracy on labelled cases.
package baseline

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
)

//go:embed data/*.txt
var dataFS embed.FS

// Checker is a detector verdict for a text
type Checker interface {
	IsRandom(text string) bool
}

// Case is a labelled text
type Case struct {
	Text   string
	Random bool   // expected verdict
	Note   string // optional note from the case file
}

// Failure is a case with unexpected verdict
type Failure struct {
	Case
	Got bool
}

func (f Failure) String() string {
	res := fmt.Sprintf("%q expected %s, got %s", f.Text, label(f.Random), label(f.Got))
	if f.Note != "" {
		res += " (" + f.Note + ")"
	}
	return res
}

// Report is a confusion matrix with failed cases. Random is the positive class.
type Report struct {
	TP, FP, TN, FN int
	Failures       []Failure
}

// Total returns the number of checked cases
func (r Report) Total() int { return r.TP + r.FP + r.TN + r.FN }

// Accuracy returns the share of correct verdicts, 0 for an empty report
func (r Report) Accuracy() float64 { return ratio(r.TP+r.TN, r.Total()) }

// Precision returns the share of correct random verdicts among all random verdicts
func (r Report) Precision() float64 { return ratio(r.TP, r.TP+r.FP) }

// Recall returns the share of random cases detected
func (r Report) Recall() float64 { return ratio(r.TP, r.TP+r.FN) }

func (r Report) String() string {
	return fmt.Sprintf("cases: %d, tp: %d, fp: %d, tn: %d, fn: %d, accuracy: %.1f%%, precision: %.1f%%, recall: %.1f%%",
		r.Total(), r.TP, r.FP, r.TN, r.FN, r.Accuracy()*100, r.Precision()*100, r.Recall()*100)
}

// Run checks all cases and collects the report
func Run(checker Checker, cases []Case) Report {
	res := Report{Failures: []Failure{}}
	for _, c := range cases {
		got := checker.IsRandom(c.Text)
		switch {
		case got && c.Random:
			res.TP++
		case got && !c.Random:
			res.FP++
		case !got && !c.Random:
			res.TN++
		default:
			res.FN++
		}
		if got != c.Random {
			res.Failures = append(res.Failures, Failure{Case: c, Got: got})
		}
	}
	return res
}

// LoadCases reads cases, one per line. A line starts with "+" for a random text or with "-" for a meaningful one,
// the rest of the line is the text, optionally followed by " # note". Empty lines and lines starting with "#" are skipped.
// All broken lines reported together.
func LoadCases(r io.Reader) ([]Case, error) {
	res := []Case{}
	errs := new(multierror.Error)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c := Case{}
		switch line[0] {
		case '+':
			c.Random = true
		case '-':
			c.Random = false
		default:
			errs = multierror.Append(errs, fmt.Errorf("line %d: expected + or - prefix, got %q", lineNum, line))
			continue
		}
		c.Text = line[1:]
		if idx := strings.Index(c.Text, " # "); idx >= 0 {
			c.Note = strings.TrimSpace(c.Text[idx+3:])
			c.Text = c.Text[:idx]
		}
		if c.Text = strings.TrimSpace(c.Text); c.Text == "" {
			errs = multierror.Append(errs, fmt.Errorf("line %d: empty text", lineNum))
			continue
		}
		res = append(res, c)
	}
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to read cases: %w", err))
	}
	return res, errs.ErrorOrNil()
}

// DefaultCases returns built-in cases for letter-only words
func DefaultCases() []Case { return mustLoadEmbedded("data/words.txt") }

// NumberCases returns built-in username cases, meant for a detector with numbers allowed
func NumberCases() []Case { return mustLoadEmbedded("data/numbers.txt") }

func mustLoadEmbedded(path string) []Case {
	fh, err := dataFS.Open(path)
	if err != nil {
		panic(fmt.Sprintf("can't open embedded cases %s: %v", path, err))
	}
	defer fh.Close()
	res, err := LoadCases(fh)
	if err != nil {
		panic(fmt.Sprintf("can't load embedded cases %s: %v", path, err))
	}
	return res
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func label(random bool) string {
	if random {
		return "random"
	}
	return "meaningful"
}
