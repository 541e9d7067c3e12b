package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/randstr/app/baseline"
	"github.com/umputun/randstr/app/profile"
	"github.com/umputun/randstr/app/webapi"
	"github.com/umputun/randstr/lib/randcheck"
)

type options struct {
	Lang       string  `long:"lang" env:"BIGRAMS_LANG" default:"en" choice:"en" choice:"fr" choice:"pt" description:"built-in bigram table language"`
	Table      string  `long:"table" env:"BIGRAMS_TABLE" description:"custom bigram table file, overrides --lang"`
	Common     float64 `long:"common" env:"COMMON" default:"0.1" description:"bigram frequency above which a bigram is common"`
	Uncommon   float64 `long:"uncommon" env:"UNCOMMON" default:"0.1" description:"ratio of uncommon bigrams making a word random"`
	Duplicated float64 `long:"duplicated" env:"DUPLICATED" default:"0.33" description:"ratio of duplicated bigrams making a word random"`
	Numbers    bool    `long:"allow-numbers" env:"ALLOW_NUMBERS" description:"allow digits and separators in words"`
	Threshold  float64 `long:"threshold" env:"THRESHOLD" default:"0.5" description:"ratio of random words making a text random"`

	Prep struct {
		Enabled   bool   `long:"enabled" env:"ENABLED" description:"clean text before detection"`
		StopWords string `long:"stop-words" env:"STOP_WORDS" description:"stop words file"`
		Numbers   bool   `long:"numbers" env:"NUMBERS" description:"remove numbers"`
	} `group:"prep" namespace:"prep" env-namespace:"PREP"`

	Check struct {
		Verbose bool `long:"verbose" short:"v" description:"show per-word evidence"`
		Args    struct {
			Texts []string `positional-arg-name:"text" description:"texts to check, stdin lines if empty"`
		} `positional-args:"yes"`
	} `command:"check" description:"check texts for random typing"`

	Baseline struct {
		File        string  `long:"file" description:"case file, built-in cases if empty"`
		MinAccuracy float64 `long:"min-accuracy" default:"0" description:"fail if accuracy is below this value"`
	} `command:"baseline" description:"measure accuracy on labelled cases"`

	Server struct {
		Listen     string        `long:"listen" env:"SERVER_LISTEN" default:":8080" description:"listen address"`
		AuthPasswd string        `long:"auth" env:"SERVER_AUTH" description:"basic auth password for reload, \"auto\" to generate"`
		RateLimit  float64       `long:"rate-limit" env:"SERVER_RATE_LIMIT" default:"50" description:"max requests per second per client"`
		WatchDelay time.Duration `long:"watch-delay" env:"SERVER_WATCH_DELAY" default:"5s" description:"delay before reload on file change"`
		CacheSize  int           `long:"cache-size" env:"SERVER_CACHE_SIZE" default:"1000" description:"max cached verdicts, 0 to disable"`
		CacheTTL   time.Duration `long:"cache-ttl" env:"SERVER_CACHE_TTL" default:"10m" description:"verdict cache ttl"`

		Log struct {
			Enabled    bool   `long:"enabled" env:"ENABLED" description:"enable rotated log of random texts"`
			FileName   string `long:"file" env:"FILE" default:"randstr.log" description:"location of the log"`
			MaxSize    string `long:"max-size" env:"MAX_SIZE" default:"100M" description:"maximum size before it gets rotated"`
			MaxBackups int    `long:"max-backups" env:"MAX_BACKUPS" default:"10" description:"maximum number of old log files to retain"`
		} `group:"log" namespace:"log" env-namespace:"SERVER_LOG"`
	} `command:"server" description:"run web api server"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "local"

func main() {
	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); !ok || flagsErr.Type != flags.ErrHelp {
			log.Printf("[ERROR] cli error: %v", err)
		}
		os.Exit(2)
	}

	setupLog(opts.Dbg, opts.Server.AuthPasswd)
	log.Printf("[DEBUG] randstr %s, options: %+v", revision, opts)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		// catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Printf("[WARN] interrupt signal")
		cancel()
	}()

	if err := execute(ctx, p.Active.Name, opts); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, cmd string, opts options) error {
	switch cmd {
	case "check":
		prof, err := makeProfile(opts, 0, 0)
		if err != nil {
			return err
		}
		return runCheck(prof, opts, os.Stdin, os.Stdout)
	case "baseline":
		prof, err := makeProfile(opts, 0, 0)
		if err != nil {
			return err
		}
		return runBaseline(prof, opts, os.Stdout)
	case "server":
		fmt.Printf("randstr %s\n", revision)
		return runServer(ctx, opts)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func makeProfile(opts options, cacheSize int, cacheTTL time.Duration) (*profile.Profile, error) {
	res, err := profile.New(profile.Options{
		Lang:            opts.Lang,
		TableFile:       opts.Table,
		CommonThreshold: opts.Common,
		UncommonRatio:   opts.Uncommon,
		DuplicatedRatio: opts.Duplicated,
		AllowNumbers:    opts.Numbers,
		Threshold:       opts.Threshold,
		Preprocess:      opts.Prep.Enabled,
		StopWordsFile:   opts.Prep.StopWords,
		RemoveNumbers:   opts.Prep.Numbers,
		CacheSize:       cacheSize,
		CacheTTL:        cacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("can't make profile: %w", err)
	}
	return res, nil
}

// runCheck prints a verdict for each text from arguments, or for each stdin line if no arguments
func runCheck(prof *profile.Profile, opts options, stdin io.Reader, out io.Writer) error {
	printVerdict := func(text string) {
		res := prof.Check(randcheck.Request{Text: text})
		verdict := color.New(color.FgGreen).Sprint("meaningful")
		if res.Random {
			verdict = color.New(color.FgRed).Sprint("random")
		}
		fmt.Fprintf(out, "%s %q, %d/%d words, ratio %.2f/%.2f\n", verdict, text, res.Flagged, res.Total, res.Ratio, res.Threshold)
		if !opts.Check.Verbose {
			return
		}
		for _, w := range res.Words {
			fmt.Fprintf(out, "  %s\n", w.String())
		}
	}

	if len(opts.Check.Args.Texts) > 0 {
		for _, text := range opts.Check.Args.Texts {
			printVerdict(text)
		}
		return nil
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			printVerdict(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// runBaseline checks labelled cases and prints the report, fails if accuracy is below the minimum
func runBaseline(prof *profile.Profile, opts options, out io.Writer) error {
	cases := baseline.DefaultCases()
	if opts.Numbers {
		cases = baseline.NumberCases()
	}
	if opts.Baseline.File != "" {
		fh, err := os.Open(opts.Baseline.File)
		if err != nil {
			return fmt.Errorf("failed to open cases %q: %w", opts.Baseline.File, err)
		}
		defer fh.Close()
		if cases, err = baseline.LoadCases(fh); err != nil {
			return fmt.Errorf("failed to load cases %q: %w", opts.Baseline.File, err)
		}
	}

	report := baseline.Run(prof, cases)
	for _, f := range report.Failures {
		fmt.Fprintf(out, "%s %s\n", color.New(color.FgRed).Sprint("fail"), f.String())
	}
	fmt.Fprintln(out, report.String())
	if report.Accuracy() < opts.Baseline.MinAccuracy {
		return fmt.Errorf("accuracy %.3f is below %.3f", report.Accuracy(), opts.Baseline.MinAccuracy)
	}
	return nil
}

func runServer(ctx context.Context, opts options) error {
	prof, err := makeProfile(opts, opts.Server.CacheSize, opts.Server.CacheTTL)
	if err != nil {
		return err
	}

	go func() {
		if err := prof.Watch(ctx, opts.Server.WatchDelay); err != nil {
			log.Printf("[WARN] profile files watcher failed: %v", err)
		}
	}()

	logWriter, err := makeVerdictLogWriter(opts)
	if err != nil {
		return fmt.Errorf("can't make verdict log writer: %w", err)
	}
	defer logWriter.Close()

	authPasswd := opts.Server.AuthPasswd
	if authPasswd == "auto" {
		if authPasswd, err = webapi.GenerateRandomPassword(20); err != nil {
			return fmt.Errorf("can't generate random password: %w", err)
		}
		log.Printf("[WARN] generated basic auth password for user randstr: %q", authPasswd)
	}

	srv := webapi.NewServer(webapi.Config{
		Version:       revision,
		ListenAddr:    opts.Server.Listen,
		Detector:      prof,
		VerdictLogger: makeVerdictLogger(logWriter),
		AuthPasswd:    authPasswd,
		RateLimit:     opts.Server.RateLimit,
		Dbg:           opts.Dbg,
	})
	return srv.Run(ctx)
}

// makeVerdictLogger makes a logger writing random texts as json lines
func makeVerdictLogger(wr io.Writer) webapi.VerdictLogger {
	return webapi.VerdictLoggerFunc(func(req randcheck.Request, res randcheck.Result) {
		text := strings.TrimSpace(strings.ReplaceAll(req.Text, "\n", " "))
		log.Printf("[INFO] random text detected, %s", res.String())
		log.Printf("[DEBUG] random text: %s", text)
		words := []string{}
		for _, w := range res.Words {
			if w.Random {
				words = append(words, w.Word)
			}
		}
		m := struct {
			TimeStamp string   `json:"ts"`
			Text      string   `json:"text"`
			Ratio     float64  `json:"ratio"`
			Threshold float64  `json:"threshold"`
			Words     []string `json:"words"`
		}{
			TimeStamp: time.Now().In(time.Local).Format(time.RFC3339),
			Text:      text,
			Ratio:     res.Ratio,
			Threshold: res.Threshold,
			Words:     words,
		}
		line, err := json.Marshal(&m)
		if err != nil {
			log.Printf("[WARN] can't marshal json, %v", err)
			return
		}
		if _, err := wr.Write(append(line, '\n')); err != nil {
			log.Printf("[WARN] can't write to log, %v", err)
		}
	})
}

// makeVerdictLogWriter creates log writer to keep random texts
// it parses options and makes lumberjack logger with rotation
func makeVerdictLogWriter(opts options) (accessLog io.WriteCloser, err error) {
	if !opts.Server.Log.Enabled {
		return nopWriteCloser{io.Discard}, nil
	}

	sizeParse := func(inp string) (uint64, error) {
		if inp == "" {
			return 0, errors.New("empty value")
		}
		for i, sfx := range []string{"k", "m", "g", "t"} {
			if strings.HasSuffix(inp, strings.ToUpper(sfx)) || strings.HasSuffix(inp, strings.ToLower(sfx)) {
				val, err := strconv.Atoi(inp[:len(inp)-1])
				if err != nil {
					return 0, fmt.Errorf("can't parse %s: %w", inp, err)
				}
				return uint64(float64(val) * math.Pow(float64(1024), float64(i+1))), nil
			}
		}
		return strconv.ParseUint(inp, 10, 64)
	}

	maxSize, perr := sizeParse(opts.Server.Log.MaxSize)
	if perr != nil {
		return nil, fmt.Errorf("can't parse logger MaxSize: %w", perr)
	}

	maxSize /= 1048576

	log.Printf("[INFO] verdict log enabled for %s, max size %dM", opts.Server.Log.FileName, maxSize)
	return &lumberjack.Logger{
		Filename:   opts.Server.Log.FileName,
		MaxSize:    int(maxSize), // in MB
		MaxBackups: opts.Server.Log.MaxBackups,
		Compress:   true,
		LocalTime:  true,
	}, nil
}

type nopWriteCloser struct{ io.Writer }

func (n nopWriteCloser) Close() error { return nil }

func setupLog(dbg bool, secrets ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	secrets = nonEmpty(secrets)
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

func nonEmpty(vals []string) []string {
	res := []string{}
	for _, v := range vals {
		if v != "" && v != "auto" {
			res = append(res, v)
		}
	}
	return res
}
