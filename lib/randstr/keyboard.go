package randstr

import (
	"fmt"
	"strings"
	"unicode"
)

// ascendingRunLen is the length of a run like "abcd" or "6789" considered a typing pattern
const ascendingRunLen = 4

// well-known typing sequences, reversed variants are added by keyboardPatterns
var keyboardSequences = []string{
	// qwerty rows
	"qwertyuiop", "asdfghjkl", "zxcvbnm", "1234567890",
	// common row starts
	"qwerty", "asdfgh", "zxcvbn",
	// columns and diagonals
	"qazwsx", "wsxedc", "edcrfv", "rfvtgb", "tgbyhn", "yhnujm", "qazwsxedc",
	// alphabet and numeric runs
	"abcdefghijklmnopqrstuvwxyz", "0123456789",
}

var keyboardPatterns = func() []string {
	res := make([]string, 0, len(keyboardSequences)*2)
	for _, s := range keyboardSequences {
		res = append(res, s, reverse(s))
	}
	return res
}()

// IsKeyboardPattern checks if the word is a known keyboard or alphabet sequence, a part of one
// at least 4 characters long, or contains an ascending run of 4 letters (or digits for a pure number).
// The word is expected to be lower-cased.
func IsKeyboardPattern(word string) bool {
	_, ok := keyboardMatch(word)
	return ok
}

// HasAscendingRun checks if s contains n consecutive characters of the same class (letters or digits),
// each exactly one code point above the previous one, like "cdef" or "3456".
func HasAscendingRun(s string, n int) bool {
	if n <= 1 {
		return s != ""
	}
	run := 1
	var prev rune
	for i, r := range []rune(s) {
		if i > 0 && r-prev == 1 && sameClass(prev, r) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
		prev = r
	}
	return false
}

// keyboardMatch returns a description of the matched pattern.
func keyboardMatch(word string) (string, bool) {
	runes := []rune(word)
	if len(runes) < ascendingRunLen {
		return "", false
	}
	for _, p := range keyboardPatterns {
		if word == p {
			return fmt.Sprintf("keyboard sequence %q", p), true
		}
	}
	for _, p := range keyboardPatterns {
		if strings.Contains(p, word) {
			return fmt.Sprintf("part of keyboard sequence %q", p), true
		}
	}

	// ascending runs are checked for letters always and for digits only in pure numbers
	letters, digits := true, true
	for _, r := range runes {
		letters = letters && unicode.IsLetter(r)
		digits = digits && unicode.IsDigit(r)
	}
	if (letters || digits) && HasAscendingRun(word, ascendingRunLen) {
		return fmt.Sprintf("ascending run of %d", ascendingRunLen), true
	}
	return "", false
}

func sameClass(a, b rune) bool {
	return unicode.IsLetter(a) && unicode.IsLetter(b) || unicode.IsDigit(a) && unicode.IsDigit(b)
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
