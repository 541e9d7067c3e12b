// Package webapi provides a web API random typing detection service.
package webapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/randstr/app/profile"
	"github.com/umputun/randstr/lib/randcheck"
)

//go:generate moq --out mocks/detector.go --pkg mocks --with-resets --skip-ensure . Detector

const authUser = "randstr"

// Server is a web API server.
type Server struct {
	Config
}

// Config defines server parameters
type Config struct {
	Version       string        // version to show in /ping
	ListenAddr    string        // listen address
	Detector      Detector      // random typing detector
	VerdictLogger VerdictLogger // optional logger of random texts
	AuthPasswd    string        // basic auth password for user "randstr", protects /reload only
	RateLimit     float64       // max requests per second per client ip, 0 means default
	Dbg           bool          // debug mode
}

// Detector is a random typing detector with reloadable profile.
type Detector interface {
	Check(req randcheck.Request) randcheck.Result
	CheckWord(word string) randcheck.Word
	Info() profile.Info
	Reload() error
}

// VerdictLogger records texts detected as random
type VerdictLogger interface {
	Save(req randcheck.Request, res randcheck.Result)
}

// VerdictLoggerFunc is a function adapter for VerdictLogger
type VerdictLoggerFunc func(req randcheck.Request, res randcheck.Result)

// Save calls f(req, res)
func (f VerdictLoggerFunc) Save(req randcheck.Request, res randcheck.Result) { f(req, res) }

// NewServer creates a new web API server.
func NewServer(config Config) *Server {
	if config.RateLimit <= 0 {
		config.RateLimit = 50
	}
	return &Server{Config: config}
}

// Run starts server and accepts requests checking texts for random typing.
func (s *Server) Run(ctx context.Context) error {
	if s.AuthPasswd != "" {
		log.Printf("[INFO] basic auth enabled for reload, user %q", authUser)
	} else {
		log.Printf("[WARN] basic auth disabled, reload is not protected")
	}

	srv := &http.Server{Addr: s.ListenAddr, Handler: s.handler(), ReadTimeout: 5 * time.Second,
		WriteTimeout: 5 * time.Second, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown webapi server: %v", err)
		} else {
			log.Printf("[INFO] webapi server stopped")
		}
	}()

	log.Printf("[INFO] start webapi server on %s", s.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to run server: %w", err)
	}
	return nil
}

func (s *Server) handler() http.Handler {
	lmt := tollbooth.NewLimiter(s.RateLimit, nil)
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})

	router := routegroup.New(http.NewServeMux())
	router.Use(rest.Recoverer(lgr.Default()))
	router.Use(rest.Throttle(1000))
	router.Use(rest.AppInfo("randstr", "umputun", s.Version), rest.Ping)
	router.Use(func(next http.Handler) http.Handler { return tollbooth.LimitHandler(lmt, next) })
	router.Use(rest.SizeLimit(64 * 1024)) // 64k max request size
	return s.routes(router)
}

func (s *Server) routes(router *routegroup.Bundle) *routegroup.Bundle {
	router.HandleFunc("POST /check", s.checkHandler)          // check a text
	router.HandleFunc("POST /check/word", s.checkWordHandler) // check a single word
	router.HandleFunc("GET /config", s.configHandler)         // active profile parameters

	admin := router.Group()
	admin.Use(s.authMiddleware(rest.BasicAuthWithUserPasswd(authUser, s.AuthPasswd)))
	admin.HandleFunc("POST /reload", s.reloadHandler) // reload bigram table and stop words
	return router
}

// checkHandler handles POST /check request.
// it gets text and optional threshold from request body and returns verdict with per-word evidence.
func (s *Server) checkHandler(w http.ResponseWriter, r *http.Request) {
	req := randcheck.Request{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		rest.RenderJSON(w, rest.JSON{"error": "can't decode request", "details": err.Error()})
		log.Printf("[WARN] can't decode request: %v", err)
		return
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		w.WriteHeader(http.StatusBadRequest)
		rest.RenderJSON(w, rest.JSON{"error": "invalid threshold", "details": fmt.Sprintf("%v not in [0, 1]", req.Threshold)})
		return
	}

	res := s.Detector.Check(req)
	if s.Dbg {
		log.Printf("[DEBUG] check %s: %s", req.String(), res.String())
	}
	if res.Random && s.VerdictLogger != nil {
		s.VerdictLogger.Save(req, res)
	}
	rest.RenderJSON(w, res)
}

// checkWordHandler handles POST /check/word request.
func (s *Server) checkWordHandler(w http.ResponseWriter, r *http.Request) {
	req := randcheck.WordRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		rest.RenderJSON(w, rest.JSON{"error": "can't decode request", "details": err.Error()})
		log.Printf("[WARN] can't decode request: %v", err)
		return
	}
	word := strings.TrimSpace(req.Word)
	if strings.ContainsAny(word, " \t\r\n") {
		w.WriteHeader(http.StatusBadRequest)
		rest.RenderJSON(w, rest.JSON{"error": "single word expected", "details": fmt.Sprintf("got %q", req.Word)})
		return
	}
	rest.RenderJSON(w, s.Detector.CheckWord(word))
}

// reloadHandler handles POST /reload request, reloads profile files.
func (s *Server) reloadHandler(w http.ResponseWriter, _ *http.Request) {
	if err := s.Detector.Reload(); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		rest.RenderJSON(w, rest.JSON{"error": "can't reload profile", "details": err.Error()})
		log.Printf("[WARN] can't reload profile: %v", err)
		return
	}
	rest.RenderJSON(w, rest.JSON{"reloaded": true, "config": s.Detector.Info()})
}

// authMiddleware applies auth middleware only if password is set
func (s *Server) authMiddleware(mw func(next http.Handler) http.Handler) func(next http.Handler) http.Handler {
	if s.AuthPasswd == "" {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return mw
}

// GenerateRandomPassword generates a random password of a given length
func GenerateRandomPassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+"

	var password strings.Builder
	charsetSize := big.NewInt(int64(len(charset)))

	for range length {
		randomNumber, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			return "", err
		}
		password.WriteByte(charset[randomNumber.Int64()])
	}

	return password.String(), nil
}
