package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/mentionserve/internal/metrics"
	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/bastiangx/mentionserve/pkg/config"
	"github.com/bastiangx/mentionserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"
)

const transport = "ipc"

// Index is the candidate index the server answers from.
type Index interface {
	suggest.ICompleter
	Types() []string
}

// Server handles the IPC for mention searches
type Server struct {
	index   Index
	cfg     config.ServerConfig
	limit   int
	limiter *rate.Limiter
	metrics *metrics.Metrics

	reader io.Reader
	mu     sync.Mutex
	enc    *msgpack.Encoder
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(index Index, cfg *config.Config, m *metrics.Metrics) *Server {
	return NewServerWithIO(index, cfg, m, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over an arbitrary stream pair.
func NewServerWithIO(index Index, cfg *config.Config, m *metrics.Metrics, r io.Reader, w io.Writer) *Server {
	return &Server{
		index:   index,
		cfg:     cfg.Server,
		limit:   cfg.Engine.DefaultLimit,
		limiter: NewLimiter(cfg.Server.RateLimit, cfg.Server.Burst),
		metrics: m,
		reader:  bufio.NewReader(r),
		enc:     msgpack.NewEncoder(w),
	}
}

// NewLimiter builds the request limiter; a non-positive rate disables limiting.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Start announces readiness and serves requests until the input ends or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")
	s.send(StatusResponse{Status: "ready"})

	dec := msgpack.NewDecoder(s.reader)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// a raw value keeps the stream aligned even when the request is malformed
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "Invalid msgpack request", CodeBadRequest)
			s.metrics.ObserveRejected(transport, metrics.OutcomeInvalid)
			continue
		}
		s.handleRequest(ctx, req)
	}
}

// handleRequest dispatches on the request action
func (s *Server) handleRequest(ctx context.Context, req Request) {
	if !s.limiter.Allow() {
		s.sendError(req.ID, "Rate limit exceeded", CodeRateLimited)
		s.metrics.ObserveRejected(transport, metrics.OutcomeRateLimited)
		return
	}

	switch req.Action {
	case "", ActionSearch:
		s.handleSearch(ctx, req)
	case ActionStats:
		s.send(StatusResponse{ID: req.ID, Status: "ok", Stats: s.index.Stats()})
	case ActionHealth:
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	case ActionAdd:
		s.handleAdd(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), CodeBadRequest)
	}
}

// ValidateWord checks the typed token against the configured length bounds.
func ValidateWord(cfg config.ServerConfig, word string) error {
	n := utf8.RuneCountInString(word)
	switch {
	case word == "":
		return errors.New("missing 'w' parameter")
	case n < cfg.MinWord:
		return fmt.Errorf("word must be at least %d characters", cfg.MinWord)
	case cfg.MaxWord > 0 && n > cfg.MaxWord:
		return fmt.Errorf("word exceeds maximum length of %d", cfg.MaxWord)
	}
	return nil
}

// ClampLimit applies the default and maximum result limits.
func ClampLimit(cfg config.ServerConfig, requested, fallback int) int {
	limit := requested
	if limit < 1 {
		limit = fallback
	}
	if cfg.MaxLimit > 0 && limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	return limit
}

func (s *Server) handleSearch(ctx context.Context, req Request) {
	if err := ValidateWord(s.cfg, req.Word); err != nil {
		s.sendError(req.ID, err.Error(), CodeBadRequest)
		s.metrics.ObserveRejected(transport, metrics.OutcomeInvalid)
		log.Debugf("Rejected request %s: %v", req.ID, err)
		return
	}

	types := req.Types
	if len(types) == 0 {
		types = s.index.Types()
	}
	limit := ClampLimit(s.cfg, req.Limit, s.limit)

	start := time.Now()
	results, err := s.index.SearchN(ctx, autocomplete.SearchParams{Types: types, Word: req.Word}, limit)
	elapsed := time.Since(start)
	s.metrics.ObserveSearch(transport, metrics.Outcome(err, len(results)), elapsed, len(results))

	if err != nil {
		code := CodeInternal
		if errors.Is(err, suggest.ErrUnknownType) {
			code = CodeBadRequest
		}
		s.sendError(req.ID, err.Error(), code)
		return
	}

	s.send(SearchResponse{
		ID:        req.ID,
		Results:   ToSearchResults(results),
		Count:     len(results),
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleAdd(req Request) {
	if len(req.Types) != 1 {
		s.sendError(req.ID, "add needs exactly one type", CodeBadRequest)
		return
	}
	if err := s.index.AddWord(req.Types[0], req.Word, req.Score); err != nil {
		s.sendError(req.ID, err.Error(), CodeBadRequest)
		return
	}
	s.send(StatusResponse{ID: req.ID, Status: "ok"})
}

// ToSearchResults converts engine results to their wire form.
func ToSearchResults(results []autocomplete.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{Type: r.Type, Label: r.Label, Replacement: r.Replacement, Score: r.Score}
	}
	return out
}

// send encodes one response; the encoder is shared so writes are serialized.
func (s *Server) send(response any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
