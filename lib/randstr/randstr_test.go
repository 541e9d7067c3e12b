package randstr

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/randstr/lib/bigrams"
	"github.com/umputun/randstr/lib/randcheck"
)

func TestDetector_New(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d := New(DefaultConfig())
		cfg := d.Config()
		assert.Equal(t, "english", cfg.Bigrams.Name())
		assert.InDelta(t, 0.1, cfg.CommonThreshold, 0.0001)
		assert.InDelta(t, 0.1, cfg.UncommonRatio, 0.0001)
		assert.InDelta(t, 0.33, cfg.DuplicatedRatio, 0.0001)
		assert.False(t, cfg.AllowNumbers)
	})

	t.Run("empty table replaced by english", func(t *testing.T) {
		d := New(Config{CommonThreshold: 0.1, UncommonRatio: 0.1, DuplicatedRatio: 0.33})
		assert.Equal(t, "english", d.Config().Bigrams.Name())
		assert.True(t, d.IsRandomWord("gdkgag"))
	})

	t.Run("rules order", func(t *testing.T) {
		names := func(d *Detector) []string {
			res := []string{}
			for _, c := range d.CheckWord("hello").Checks {
				res = append(res, c.Name)
			}
			return res
		}
		assert.Equal(t, []string{"length", "alphabet", "repeated", "keyboard", "bigrams"}, names(New(DefaultConfig())))
		cfg := DefaultConfig()
		cfg.AllowNumbers = true
		assert.Equal(t, []string{"length", "digits", "repeated", "keyboard", "bigrams"}, names(New(cfg)))
	})
}

func TestDetector_IsRandomWord(t *testing.T) {
	d := New(DefaultConfig())
	tbl := []struct {
		word string
		exp  bool
	}{
		{"", false},
		{"a", false},
		{"xq", false},
		{"xqz", false},
		{"hello", false},
		{"world", false},
		{"computer", false},
		{"programming", false},
		{"chicago", false},
		{"question", false},
		{"different", false},
		{"important", false},
		{"because", false},
		{"information", false},
		{"supercalifragilisticexpialidocious", false},
		{"mississippi", false},
		{"hello1", false},
		{"user123", false},
		{"hello-world", false},
		{"aaaa", true},
		{"zzzzzzz", true},
		{"asdfgh", true},
		{"qwerty", true},
		{"zxcvbnm", true},
		{"hgfdsa", true},
		{"mnbvcxz", true},
		{"bcdefg", true},
		{"lmnop", true},
		{"xabcdx", true},
		{"gdkgag", true},
		{"xkcdqz", true},
		{"xyzw", true},
		{"abab", true},
		{"banana", true},
	}
	for _, tt := range tbl {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.exp, d.IsRandomWord(tt.word))
		})
	}
}

func TestDetector_IsRandomWordWithNumbers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowNumbers = true
	d := New(cfg)
	tbl := []struct {
		word string
		exp  bool
	}{
		{"123", false},
		{"2024", true},
		{"12345", true},
		{"0000", true},
		{"user123", true},
		{"test12", true},
		{"a1b2c3d4", true},
		{"x9y8z7w6", true},
		{"h3ll0w0rld", true},
		{"qwerty123", true},
		{"abc123def456", true},
		{"asdjf2398rj", true},
		{"asdf1234", true},
		{"hello2world", true},
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"michael1985", false},
		{"chicagofan23", false},
		{"chicagofan2023", false},
		{"helloworld2024", false},
		{"password12", false},
		{"hello-world", false},
		{"hello_world", false},
		{"hello", false},
		{"gdkgag", true},
	}
	for _, tt := range tbl {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.exp, d.IsRandomWord(tt.word))
		})
	}
}

func TestDetector_CaseInsensitive(t *testing.T) {
	d := New(DefaultConfig())
	for _, w := range []string{"hello", "gdkgag", "asdfgh", "computer", "xkcdqz"} {
		exp := d.IsRandomWord(w)
		assert.Equal(t, exp, d.IsRandomWord(strings.ToUpper(w)), w)
		assert.Equal(t, exp, d.IsRandomWord(strings.ToUpper(w[:1])+w[1:]), w)
	}
	assert.Equal(t, "asdfgh", d.CheckWord("ASDFGH").Word)
}

func TestDetector_CheckWord(t *testing.T) {
	d := New(DefaultConfig())

	t.Run("short word decided by length", func(t *testing.T) {
		res := d.CheckWord("abc")
		assert.False(t, res.Random)
		assert.Equal(t, "length", res.Rule)
		require.Len(t, res.Checks, 1)
		assert.Equal(t, randcheck.Response{Name: "length", Random: false, Details: "too short, 3/4 chars"}, res.Checks[0])
		assert.Equal(t, randcheck.Stats{}, res.Stats)
	})

	t.Run("non-alphabetic word decided by alphabet", func(t *testing.T) {
		res := d.CheckWord("hello1")
		assert.False(t, res.Random)
		assert.Equal(t, "alphabet", res.Rule)
		require.Len(t, res.Checks, 2)
		assert.Equal(t, "6 chars", res.Checks[0].Details)
		assert.Equal(t, "non-alphabetic", res.Checks[1].Details)
	})

	t.Run("repeated char", func(t *testing.T) {
		res := d.CheckWord("aaaaa")
		assert.True(t, res.Random)
		assert.Equal(t, "repeated", res.Rule)
		require.Len(t, res.Checks, 3)
		assert.Equal(t, `single character 'a'`, res.Checks[2].Details)
	})

	t.Run("keyboard row", func(t *testing.T) {
		res := d.CheckWord("asdfgh")
		assert.True(t, res.Random)
		assert.Equal(t, "keyboard", res.Rule)
		require.Len(t, res.Checks, 4)
		assert.Equal(t, "4 distinct chars", d.CheckWord("gdkgag").Checks[2].Details)
		assert.Equal(t, `keyboard sequence "asdfgh"`, res.Checks[3].Details)
	})

	t.Run("uncommon bigrams", func(t *testing.T) {
		res := d.CheckWord("gdkgag")
		assert.True(t, res.Random)
		assert.Equal(t, "bigrams", res.Rule)
		require.Len(t, res.Checks, 5)
		assert.Equal(t, randcheck.Response{Name: "keyboard", Random: false, Details: "no pattern"}, res.Checks[3])
		assert.Equal(t, "uncommon 0.60/0.10, duplicated 0.00/0.33", res.Checks[4].Details)
		assert.Equal(t, 5, res.Stats.Bigrams)
		assert.Equal(t, 3, res.Stats.Uncommon)
		assert.Equal(t, 5, res.Stats.Distinct)
		assert.InDelta(t, 0.6, res.Stats.UncommonRatio, 0.0001)
		assert.InDelta(t, 0.0, res.Stats.DuplicatedRatio, 0.0001)
		assert.InDelta(t, 0.1, res.Stats.UncommonThreshold, 0.0001)
		assert.Equal(t, []string{"gd", "dk", "kg"}, res.Stats.UncommonBigrams)
	})

	t.Run("duplicated bigrams", func(t *testing.T) {
		res := d.CheckWord("ababab")
		assert.True(t, res.Random)
		assert.Equal(t, "bigrams", res.Rule)
		assert.Equal(t, 0, res.Stats.Uncommon)
		assert.Equal(t, 2, res.Stats.Distinct)
		assert.InDelta(t, 0.6, res.Stats.DuplicatedRatio, 0.0001)
	})

	t.Run("meaningful word", func(t *testing.T) {
		res := d.CheckWord("hello")
		assert.False(t, res.Random)
		assert.Equal(t, "bigrams", res.Rule)
		require.Len(t, res.Checks, 5)
		for _, c := range res.Checks {
			assert.False(t, c.Random, c.Name)
		}
		assert.Equal(t, `"hello" meaningful by bigrams [{length: ok, 5 chars}, {alphabet: ok, letters only}, `+
			`{repeated: ok, 4 distinct chars}, {keyboard: ok, no pattern}, {bigrams: ok, uncommon 0.00/0.10, duplicated 0.00/0.33}]`,
			res.String())
	})

	t.Run("long word gets relaxed threshold", func(t *testing.T) {
		res := d.CheckWord("mississippi")
		assert.False(t, res.Random)
		assert.InDelta(t, 0.15, res.Stats.UncommonThreshold, 0.0001)
		assert.InDelta(t, 0.1, res.Stats.UncommonRatio, 0.0001)
		assert.InDelta(t, 0.2, d.CheckWord("supercalifragilisticexpialidocious").Stats.UncommonThreshold, 0.0001)
	})

	t.Run("numbers allowed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AllowNumbers = true
		dn := New(cfg)

		res := dn.CheckWord("2024")
		assert.True(t, res.Random)
		assert.Equal(t, "digits", res.Rule)
		assert.Equal(t, "digits only", res.Checks[1].Details)

		res = dn.CheckWord("user123")
		assert.True(t, res.Random)
		assert.Equal(t, "bigrams", res.Rule)
		assert.Equal(t, "not alphabetic, skipped", res.Checks[3].Details)
		assert.Equal(t, []string{"r1", "12", "23"}, res.Stats.UncommonBigrams)
		assert.InDelta(t, 0.5, res.Stats.UncommonRatio, 0.0001)

		res = dn.CheckWord("chicagofan23")
		assert.False(t, res.Random)
		assert.Equal(t, 0, res.Stats.Uncommon)
	})
}

func TestDetector_Detect(t *testing.T) {
	d := New(DefaultConfig())
	tbl := []struct {
		text      string
		threshold float64
		exp       bool
	}{
		{"", 0.5, false},
		{"   \t\n ", 0.5, false},
		{"", 0, false},
		{"hello world", 0.5, false},
		{"Hello World", 0.5, false},
		{"HELLO WORLD", 0.5, false},
		{"hello there my friend", 0.5, false},
		{"ASDFGH", 0.5, true},
		{"asdf qwer zxcv", 0.5, true},
		{"hello xqwerty", 0.5, true},
		{"mnbvcxz world", 0.5, true},
		{"gdkgag hello", 0.5, true},
		{"gdkgag hello world", 0.5, false},
		{"gdkgag hello world", 0.33, true},
		{"gdkgag hello world", 0.34, false},
		{"gasdgz hello world test", 0.5, false},
		{"gasdgz hello world test", 0.25, true},
		{"hello world", 0, true},
		{"gdkgag xkcdqz", 1, true},
	}
	for _, tt := range tbl {
		t.Run(fmt.Sprintf("%q/%.2f", tt.text, tt.threshold), func(t *testing.T) {
			assert.Equal(t, tt.exp, d.Detect(tt.text, tt.threshold))
			assert.Equal(t, tt.exp, d.Check(tt.text, tt.threshold).Random)
		})
	}

	t.Run("default threshold", func(t *testing.T) {
		assert.True(t, d.IsRandom("asdfgh"))
		assert.False(t, d.IsRandom("hello world"))
		assert.False(t, d.IsRandom(""))
	})

	t.Run("with numbers", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AllowNumbers = true
		dn := New(cfg)
		assert.False(t, dn.IsRandom("hello world 2024"))
		assert.False(t, dn.IsRandom("my id is 550e8400-e29b-41d4-a716-446655440000"))
		assert.True(t, dn.IsRandom("login asdf1234"))
	})
}

func TestDetector_DetectThresholdMonotonic(t *testing.T) {
	d := New(DefaultConfig())
	texts := []string{"gdkgag hello world", "gasdgz hello world test", "asdfgh qwerty hello", "hello world"}
	for _, text := range texts {
		prev := true
		for thr := 0.0; thr <= 1.0; thr += 0.05 {
			res := d.Detect(text, thr)
			if !prev {
				assert.False(t, res, "text %q, threshold %.2f", text, thr)
			}
			prev = res
		}
	}
}

func TestDetector_Check(t *testing.T) {
	d := New(DefaultConfig())

	t.Run("empty", func(t *testing.T) {
		res := d.Check("  ", 0.5)
		assert.False(t, res.Random)
		assert.Equal(t, 0, res.Total)
		assert.NotNil(t, res.Words)
		assert.Empty(t, res.Words)
	})

	t.Run("words and ratio", func(t *testing.T) {
		res := d.Check("Gdkgag hello world", 0.3)
		assert.True(t, res.Random)
		assert.Equal(t, 1, res.Flagged)
		assert.Equal(t, 3, res.Total)
		assert.InDelta(t, 0.3333, res.Ratio, 0.001)
		assert.InDelta(t, 0.3, res.Threshold, 0.0001)
		require.Len(t, res.Words, 3)
		assert.Equal(t, "gdkgag", res.Words[0].Word)
		assert.True(t, res.Words[0].Random)
		assert.False(t, res.Words[1].Random)
		assert.False(t, res.Words[2].Random)
		assert.Equal(t, "random, 1/3 words, ratio 0.33/0.30", res.String())
	})
}

func TestDetector_Languages(t *testing.T) {
	newDetector := func(tbl bigrams.Table) *Detector {
		cfg := DefaultConfig()
		cfg.Bigrams = tbl
		return New(cfg)
	}
	en, pt, fr := newDetector(bigrams.English()), newDetector(bigrams.Portuguese()), newDetector(bigrams.French())

	for _, w := range []string{"cartao", "informacao", "coracao", "entao", "voce", "trabalho"} {
		assert.True(t, en.IsRandomWord(w), "english %s", w)
		assert.False(t, pt.IsRandomWord(w), "portuguese %s", w)
	}

	assert.True(t, en.IsRandomWord("oiseaux"))
	assert.True(t, pt.IsRandomWord("oiseaux"))
	assert.False(t, fr.IsRandomWord("oiseaux"))

	assert.False(t, en.IsRandomWord("hello"))
	assert.True(t, pt.IsRandomWord("hello"))

	// keyboard patterns do not depend on the table
	for _, d := range []*Detector{en, pt, fr} {
		assert.True(t, d.IsRandomWord("qwerty"))
		assert.True(t, d.IsRandomWord("aaaa"))
	}
}

func TestDetector_Thresholds(t *testing.T) {
	t.Run("loose uncommon ratio", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.UncommonRatio = 0.5
		assert.False(t, New(cfg).IsRandomWord("hello"))
	})
	t.Run("zero common threshold", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CommonThreshold = 0
		assert.True(t, New(cfg).IsRandomWord("gdkgag"))
	})
	t.Run("huge common threshold makes every bigram uncommon", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CommonThreshold = 100
		assert.True(t, New(cfg).IsRandomWord("computer"))
	})
}

func TestDetector_Deterministic(t *testing.T) {
	d := New(DefaultConfig())
	for _, w := range []string{"hello", "gdkgag", "mississippi", "asdfgh", "user123"} {
		exp := d.CheckWord(w)
		for range 5 {
			assert.Equal(t, exp, d.CheckWord(w))
		}
	}
}

func TestDetector_Concurrent(t *testing.T) {
	d := New(DefaultConfig())
	texts := map[string]bool{"hello world": false, "asdfgh qwerty": true, "gdkgag xkcdqz": true, "": false}

	var wg sync.WaitGroup
	errs := make(chan string, 100)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				for text, exp := range texts {
					if d.IsRandom(text) != exp {
						errs <- text
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("unexpected verdict for %q", e)
	}
}
