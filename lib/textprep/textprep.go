// Package textprep cleans a text before random typing detection: strips accents, emoji, punctuation,
// stop words and anything not representable in ASCII. It is optional, detector never calls it.
package textprep

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strings"
	"unicode"

	"github.com/forPelevin/gomoji"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Preprocessor applies cleaning steps to a text. Immutable, safe for concurrent use.
type Preprocessor struct {
	stopWords     map[string]struct{}
	removeNumbers bool
}

// Options for Preprocessor
type Options struct {
	StopWords     []string // words removed from the text, case-insensitive
	RemoveNumbers bool     // remove all digits
}

var numbersRe = regexp.MustCompile(`\d+`)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// New makes a Preprocessor with given options.
func New(opts Options) *Preprocessor {
	res := &Preprocessor{stopWords: make(map[string]struct{}, len(opts.StopWords)), removeNumbers: opts.RemoveNumbers}
	for _, w := range opts.StopWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			res.stopWords[w] = struct{}{}
		}
	}
	return res
}

// Process runs all steps: accents, emoji, punctuation, stop words, non-ASCII chars, numbers (if enabled).
// Whitespace in the result is collapsed and trimmed.
func (p *Preprocessor) Process(text string) string {
	text = RemoveAccents(text)
	text = RemoveEmoji(text)
	text = RemovePunctuation(text)
	text = p.RemoveStopWords(text)
	text = ToASCII(text)
	if p.removeNumbers {
		text = RemoveNumbers(text)
	}
	return strings.Join(strings.Fields(text), " ")
}

// StopWords returns the number of stop words.
func (p *Preprocessor) StopWords() int { return len(p.stopWords) }

// RemoveStopWords drops whole words found in stop words list, compared case-insensitive.
func (p *Preprocessor) RemoveStopWords(text string) string {
	if len(p.stopWords) == 0 {
		return text
	}
	words := strings.Fields(text)
	res := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := p.stopWords[strings.ToLower(w)]; ok {
			continue
		}
		res = append(res, w)
	}
	return strings.Join(res, " ")
}

// RemoveAccents decomposes the text and drops combining marks, "coração" becomes "coracao".
func RemoveAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	res, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return res
}

// RemoveEmoji removes all emoji from the text.
func RemoveEmoji(text string) string {
	return gomoji.RemoveEmojis(text)
}

// RemovePunctuation removes ASCII punctuation characters.
func RemovePunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, text)
}

// ToASCII applies compatibility decomposition and drops everything outside of ASCII.
func ToASCII(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })))
	res, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return res
}

// RemoveNumbers removes all digit sequences.
func RemoveNumbers(text string) string {
	return numbersRe.ReplaceAllString(text, "")
}

// LoadStopWords reads stop words from readers. Each line is either a single word
// or a comma-separated list of quoted words, like `"foo", "bar"`. Duplicates are kept once,
// in the order of appearance.
func LoadStopWords(readers ...io.Reader) ([]string, error) {
	res := []string{}
	seen := map[string]struct{}{}
	errs := new(multierror.Error)
	for token, err := range readerIterator(readers...) {
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		token = strings.ToLower(token)
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		res = append(res, token)
	}
	return res, errs.ErrorOrNil()
}

// readerIterator yields non-empty tokens from all readers, one per line or comma-separated quoted lists.
func readerIterator(readers ...io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for i, reader := range readers {
			scanner := bufio.NewScanner(reader)
			for scanner.Scan() {
				line := scanner.Text()
				if strings.Contains(line, ",") && strings.HasPrefix(line, "\"") {
					// line with comma-separated tokens
					for _, token := range strings.Split(line, ",") {
						cleanToken := strings.Trim(token, " \"\n\r\t")
						if cleanToken != "" && !yield(cleanToken, nil) {
							return
						}
					}
					continue
				}
				// each line with a single token
				cleanToken := strings.Trim(line, " \n\r\t")
				if cleanToken != "" && !yield(cleanToken, nil) {
					return
				}
			}
			if err := scanner.Err(); err != nil {
				if !yield("", fmt.Errorf("failed to read stop words from reader #%d: %w", i, err)) {
					return
				}
			}
		}
	}
}
