// Package profile keeps the active detector with its bigram table and text preprocessor.
// Profile can be reloaded on request or on change of the underlying files, check results are cached.
package profile

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	cache "github.com/go-pkgz/expirable-cache/v3"
	"github.com/hashicorp/go-multierror"

	"github.com/umputun/randstr/lib/bigrams"
	"github.com/umputun/randstr/lib/randcheck"
	"github.com/umputun/randstr/lib/randstr"
	"github.com/umputun/randstr/lib/textprep"
)

// Profile is a reloadable detector with preprocessor and verdict cache, thread-safe.
type Profile struct {
	opts Options

	mu       sync.RWMutex
	detector *randstr.Detector
	prep     *textprep.Preprocessor // nil if preprocessing disabled
	loadedAt time.Time

	cache cache.Cache[string, randcheck.Result]
}

// Options is a full set of parameters for the profile
type Options struct {
	Lang            string  // built-in table language, ignored if TableFile set
	TableFile       string  // custom bigram table file
	CommonThreshold float64 // bigram frequency above which a bigram is common
	UncommonRatio   float64 // ratio of uncommon bigrams making a word random
	DuplicatedRatio float64 // ratio of duplicated bigrams making a word random
	AllowNumbers    bool
	Threshold       float64 // default ratio of random words making a text random

	Preprocess    bool   // clean text before detection
	StopWordsFile string // stop words removed by preprocessing, optional
	RemoveNumbers bool   // remove digits during preprocessing

	CacheSize int           // max number of cached verdicts, 0 disables caching
	CacheTTL  time.Duration // verdict cache ttl
}

// Info describes the active profile
type Info struct {
	Table           string    `json:"table"`
	Bigrams         int       `json:"bigrams"`
	CommonThreshold float64   `json:"common_threshold"`
	UncommonRatio   float64   `json:"uncommon_ratio"`
	DuplicatedRatio float64   `json:"duplicated_ratio"`
	AllowNumbers    bool      `json:"allow_numbers"`
	Threshold       float64   `json:"threshold"`
	Preprocess      bool      `json:"preprocess"`
	StopWords       int       `json:"stop_words"`
	LoadedAt        time.Time `json:"loaded_at"`
}

// New makes a profile and loads table and stop words
func New(opts Options) (*Profile, error) {
	if opts.Threshold == 0 {
		opts.Threshold = randstr.DefaultThreshold
	}
	res := &Profile{opts: opts}
	if opts.CacheSize > 0 {
		res.cache = cache.NewCache[string, randcheck.Result]().WithMaxKeys(opts.CacheSize).WithLRU().WithTTL(opts.CacheTTL)
	}
	if err := res.Reload(); err != nil {
		return nil, err
	}
	return res, nil
}

// Reload rebuilds the detector and the preprocessor from files. On error the active profile is kept.
func (p *Profile) Reload() error {
	log.Printf("[DEBUG] reloading profile")
	errs := new(multierror.Error)

	tbl, err := p.loadTable()
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	prep, err := p.loadPreprocessor()
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	detector := randstr.New(randstr.Config{
		Bigrams:         tbl,
		CommonThreshold: p.opts.CommonThreshold,
		UncommonRatio:   p.opts.UncommonRatio,
		DuplicatedRatio: p.opts.DuplicatedRatio,
		AllowNumbers:    p.opts.AllowNumbers,
	})

	p.mu.Lock()
	p.detector, p.prep, p.loadedAt = detector, prep, time.Now()
	if p.cache != nil {
		p.cache.Purge()
	}
	p.mu.Unlock()

	stopWords := 0
	if prep != nil {
		stopWords = prep.StopWords()
	}
	log.Printf("[INFO] profile loaded, table: %s, stop words: %d", tbl, stopWords)
	return nil
}

// Check checks the text with request threshold, or the profile's default one if not set.
func (p *Profile) Check(req randcheck.Request) randcheck.Result {
	threshold := req.Threshold
	if threshold == 0 {
		threshold = p.opts.Threshold
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	key := fmt.Sprintf("%.4f:%s", threshold, req.Text)
	if p.cache != nil {
		if res, ok := p.cache.Get(key); ok {
			return res
		}
	}

	text := req.Text
	if p.prep != nil {
		text = p.prep.Process(text)
	}
	res := p.detector.Check(text, threshold)
	if p.cache != nil {
		p.cache.Set(key, res, 0)
	}
	return res
}

// CheckWord checks a single word, no preprocessing or caching applied
func (p *Profile) CheckWord(word string) randcheck.Word {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.detector.CheckWord(word)
}

// IsRandom checks the text with the default threshold
func (p *Profile) IsRandom(text string) bool {
	return p.Check(randcheck.Request{Text: text}).Random
}

// Info returns the active profile parameters
func (p *Profile) Info() Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cfg := p.detector.Config()
	res := Info{
		Table:           cfg.Bigrams.Name(),
		Bigrams:         cfg.Bigrams.Len(),
		CommonThreshold: cfg.CommonThreshold,
		UncommonRatio:   cfg.UncommonRatio,
		DuplicatedRatio: cfg.DuplicatedRatio,
		AllowNumbers:    cfg.AllowNumbers,
		Threshold:       p.opts.Threshold,
		Preprocess:      p.prep != nil,
		LoadedAt:        p.loadedAt,
	}
	if p.prep != nil {
		res.StopWords = p.prep.StopWords()
	}
	return res
}

// Watch watches for changes of the table and stop words files and reloads the profile.
// The delay is the time to wait after the first change before reloading, to avoid multiple reloads.
// Blocks until the context is canceled, returns immediately if there is nothing to watch.
func (p *Profile) Watch(ctx context.Context, delay time.Duration) error {
	files := p.files()
	if len(files) == 0 {
		log.Printf("[DEBUG] no profile files to watch")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	errs := new(multierror.Error)
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to stat file %q: %w", file, err))
			continue
		}
		log.Printf("[DEBUG] add file %q to watcher", file)
		errs = multierror.Append(errs, watcher.Add(file))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("failed to add some files to watcher: %w", err)
	}

	reloadTimer := time.NewTimer(delay)
	defer reloadTimer.Stop()
	reloadPending := false
	for {
		select {
		case <-ctx.Done():
			log.Printf("[INFO] stopping watcher for profile files: %v", ctx.Err())
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.Printf("[DEBUG] file %q updated, op: %v", event.Name, event.Op)
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				// editors replace files, re-add to keep watching the new one
				_ = watcher.Remove(event.Name)
				if err := watcher.Add(event.Name); err != nil {
					log.Printf("[WARN] can't re-add %q to watcher: %v", event.Name, err)
				}
			}
			if !reloadPending {
				reloadPending = true
				reloadTimer.Reset(delay)
			}
		case <-reloadTimer.C:
			if reloadPending {
				reloadPending = false
				if err := p.Reload(); err != nil {
					log.Printf("[WARN] %v", err)
				}
			}
		case e, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[WARN] watcher error: %v", e)
		}
	}
}

func (p *Profile) files() []string {
	res := []string{}
	if p.opts.TableFile != "" {
		res = append(res, p.opts.TableFile)
	}
	if p.opts.Preprocess && p.opts.StopWordsFile != "" {
		res = append(res, p.opts.StopWordsFile)
	}
	return res
}

func (p *Profile) loadTable() (bigrams.Table, error) {
	if p.opts.TableFile == "" {
		return bigrams.ByName(p.opts.Lang)
	}
	fh, err := os.Open(p.opts.TableFile)
	if err != nil {
		return bigrams.Table{}, fmt.Errorf("failed to open bigram table %q: %w", p.opts.TableFile, err)
	}
	defer fh.Close()
	return bigrams.LoadTable(p.opts.TableFile, fh)
}

func (p *Profile) loadPreprocessor() (*textprep.Preprocessor, error) {
	if !p.opts.Preprocess {
		return nil, nil
	}
	opts := textprep.Options{RemoveNumbers: p.opts.RemoveNumbers}
	if p.opts.StopWordsFile != "" {
		fh, err := os.Open(p.opts.StopWordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open stop words %q: %w", p.opts.StopWordsFile, err)
		}
		defer fh.Close()
		if opts.StopWords, err = textprep.LoadStopWords(fh); err != nil {
			return nil, fmt.Errorf("failed to load stop words %q: %w", p.opts.StopWordsFile, err)
		}
	}
	return textprep.New(opts), nil
}
