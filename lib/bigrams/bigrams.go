// Package bigrams provides frequency tables of two-character sequences observed in a reference
// language corpus. Tables are immutable once constructed and safe for concurrent use.
//
// Built-in tables (English, Portuguese and French with accents stripped) are embedded into the binary,
// custom tables can be made from a map with NewTable or loaded from a reader with LoadTable.
// The text format used by LoadTable is one "<bigram> <frequency>" pair per line, lines starting
// with # and empty lines are ignored:
//
//	# comment
//	th 3.56
//	he 3.07
package bigrams

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

//go:embed data/*.txt
var dataFS embed.FS

// Table is an immutable mapping from a lower-cased bigram to its non-negative frequency.
// Bigrams not present in the table have frequency 0.
type Table struct {
	name  string
	freqs map[string]float64
}

// Built-in tables, parsed from embedded data on first use.
var (
	English    = sync.OnceValue(func() Table { return mustLoadEmbedded("english", "data/en.txt") })
	Portuguese = sync.OnceValue(func() Table { return mustLoadEmbedded("portuguese", "data/pt.txt") })
	French     = sync.OnceValue(func() Table { return mustLoadEmbedded("french", "data/fr.txt") })
)

// NewTable makes a table from a map of bigrams to frequencies. Keys are lower-cased, each key
// must be exactly two characters long and each value must be a finite non-negative number.
// All problems found are returned together.
func NewTable(name string, freqs map[string]float64) (Table, error) {
	keys := make([]string, 0, len(freqs))
	for k := range freqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := Table{name: name, freqs: make(map[string]float64, len(freqs))}
	errs := new(multierror.Error)
	for _, k := range keys {
		if err := res.add(k, freqs[k]); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return Table{}, fmt.Errorf("invalid bigram table %q: %w", name, err)
	}
	return res, nil
}

// LoadTable reads a table in "<bigram> <frequency>" per line format.
// Errors for all broken lines are collected and returned together.
func LoadTable(name string, r io.Reader) (Table, error) {
	res := Table{name: name, freqs: map[string]float64{}}
	errs := new(multierror.Error)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		elems := strings.Fields(line)
		if len(elems) != 2 {
			errs = multierror.Append(errs, fmt.Errorf("line %d: expected bigram and frequency, got %q", lineNum, line))
			continue
		}
		freq, err := strconv.ParseFloat(elems[1], 64)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("line %d: can't parse frequency %q: %w", lineNum, elems[1], err))
			continue
		}
		if err := res.add(elems[0], freq); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("line %d: %w", lineNum, err))
		}
	}
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to read table: %w", err))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return Table{}, fmt.Errorf("invalid bigram table %q: %w", name, err)
	}
	return res, nil
}

// ByName returns a built-in table by language name or code.
func ByName(lang string) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en", "english":
		return English(), nil
	case "pt", "portuguese":
		return Portuguese(), nil
	case "fr", "french":
		return French(), nil
	}
	return Table{}, fmt.Errorf("unknown bigram table language %q, supported: %s", lang, strings.Join(Languages(), ", "))
}

// Languages returns codes of built-in tables.
func Languages() []string { return []string{"en", "fr", "pt"} }

// Freq returns frequency of a bigram, 0 if the bigram is unknown.
func (t Table) Freq(bigram string) float64 {
	if f, ok := t.freqs[bigram]; ok {
		return f
	}
	return t.freqs[strings.ToLower(bigram)]
}

// Name returns the table name.
func (t Table) Name() string { return t.name }

// Len returns the number of bigrams with a known frequency.
func (t Table) Len() int { return len(t.freqs) }

// Bigrams returns all known bigrams, sorted.
func (t Table) Bigrams() []string {
	res := make([]string, 0, len(t.freqs))
	for k := range t.freqs {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

func (t Table) String() string {
	return fmt.Sprintf("%s (%d bigrams)", t.name, len(t.freqs))
}

// add validates and stores a single entry, used during construction only.
func (t *Table) add(bigram string, freq float64) error {
	key := strings.ToLower(bigram)
	if utf8.RuneCountInString(key) != 2 {
		return fmt.Errorf("bigram %q must be exactly 2 characters", bigram)
	}
	if math.IsNaN(freq) || math.IsInf(freq, 0) {
		return fmt.Errorf("bigram %q has invalid frequency %v", bigram, freq)
	}
	if freq < 0 {
		return fmt.Errorf("bigram %q has negative frequency %v", bigram, freq)
	}
	if _, ok := t.freqs[key]; ok {
		return fmt.Errorf("duplicate bigram %q", key)
	}
	t.freqs[key] = freq
	return nil
}

func mustLoadEmbedded(name, path string) Table {
	fh, err := dataFS.Open(path)
	if err != nil {
		panic(fmt.Sprintf("can't open embedded bigram table %s: %v", path, err))
	}
	defer fh.Close()
	res, err := LoadTable(name, fh)
	if err != nil {
		panic(err)
	}
	if res.Len() == 0 {
		panic(errors.New("empty embedded bigram table " + path))
	}
	return res
}
