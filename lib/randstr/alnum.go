package randstr

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	alternatingMinLen   = 6
	alternatingRatio    = 0.6
	hexMinLen           = 8
	hexRatio            = 0.8
	shortAlnumLen       = 10  // words shorter than this are judged by letters and digits count
	shortAlnumMinLetter = 6   // short words with fewer letters are random
	shortAlnumMaxDigits = 0.3 // short words with a larger share of digits are random
	mixedRunsMin        = 3   // long words with this many letter/digit runs are random
	digitSuffixLen      = 4
	mixedSuffixLen      = 6
)

// IsLikelyRandomAlphanumericBigram checks if a bigram with a digit or a separator is evidence of random
// typing within the word, as opposed to a benign numeric suffix like a year in "chicagofan2023".
// The verdict depends on the shape of the whole word.
func IsLikelyRandomAlphanumericBigram(bigram, word string) bool {
	word = strings.ToLower(word)
	pos := strings.LastIndex(word, strings.ToLower(bigram))
	if pos > 0 {
		pos = utf8.RuneCountInString(word[:pos])
	}
	random, _ := alnumBigramVerdict(pos, []rune(word))
	return random
}

// IsAlternating checks if the word switches between letters and digits in more than 60% of
// adjacent pairs, like "a1b2c3". Words shorter than 6 characters never match.
func IsAlternating(word string) bool {
	runes := []rune(word)
	if len(runes) < alternatingMinLen {
		return false
	}
	switches := 0
	for i := 1; i < len(runes); i++ {
		a, b := runes[i-1], runes[i]
		if unicode.IsLetter(a) && unicode.IsDigit(b) || unicode.IsDigit(a) && unicode.IsLetter(b) {
			switches++
		}
	}
	return float64(switches)/float64(len(runes)-1) > alternatingRatio
}

// LooksLikeHex checks if at least 80% of the word are hex digits, case-insensitive.
// Words shorter than 8 characters never match.
func LooksLikeHex(word string) bool {
	runes := []rune(word)
	if len(runes) < hexMinLen {
		return false
	}
	hex := 0
	for _, r := range runes {
		if strings.ContainsRune("0123456789abcdefABCDEF", r) {
			hex++
		}
	}
	return float64(hex)/float64(len(runes)) >= hexRatio
}

// alnumBigramVerdict judges the bigram at position pos of the word, returns the verdict and the reason.
func alnumBigramVerdict(pos int, runes []rune) (random bool, reason string) {
	word := string(runes)
	if IsAlternating(word) {
		return true, "alternating letters and digits"
	}
	if LooksLikeHex(word) {
		return true, "hex-like"
	}

	n := len(runes)
	if n < shortAlnumLen {
		letters, digits := 0, 0
		for _, r := range runes {
			switch {
			case unicode.IsLetter(r):
				letters++
			case unicode.IsDigit(r):
				digits++
			}
		}
		if letters < shortAlnumMinLetter {
			return true, "too few letters"
		}
		if float64(digits)/float64(n) > shortAlnumMaxDigits {
			return true, "too many digits"
		}
		return false, "short word with few digits"
	}

	if letterDigitRuns(runes) >= mixedRunsMin {
		return true, "mixed letters and digits"
	}

	// long word with a single numeric block, benign wherever the bigram is
	if pos >= 0 && pos+1 < n {
		tail := n - pos
		digitsOnly := unicode.IsDigit(runes[pos]) && unicode.IsDigit(runes[pos+1])
		if digitsOnly && tail <= digitSuffixLen || !digitsOnly && tail <= mixedSuffixLen {
			return false, "numeric suffix"
		}
	}
	return false, "long word"
}

// letterDigitRuns counts contiguous runs of letters and digits, other characters are skipped.
func letterDigitRuns(runes []rune) int {
	res := 0
	var prev rune // 'l' for letters, 'd' for digits
	for _, r := range runes {
		var cur rune
		switch {
		case unicode.IsLetter(r):
			cur = 'l'
		case unicode.IsDigit(r):
			cur = 'd'
		default:
			continue
		}
		if cur != prev {
			res++
			prev = cur
		}
	}
	return res
}
