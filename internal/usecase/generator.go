package usecase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jobfolio/internal/model"
	"jobfolio/internal/schema"
)

const DefaultGenerationTimeout = 120 * time.Second

var (
	// ErrGenerationTimeout means the backend did not answer within the
	// generation deadline. It is not a network failure.
	ErrGenerationTimeout = errors.New("generation took too long")
	ErrRateLimited       = errors.New("too many generation requests")
	ErrEmptyResume       = errors.New("resume markdown is empty")
)

// GenerationBackend builds a portfolio document from a résumé.
type GenerationBackend interface {
	Generate(ctx context.Context, resumeMarkdown string) (map[string]interface{}, error)
}

// Creator stores a new document and returns its id.
type Creator interface {
	Create(ctx context.Context, doc map[string]interface{}) (string, error)
}

// Generation is a generated portfolio. ID is empty unless the generator
// was given a Creator.
type Generation struct {
	ID     string                `json:"id,omitempty"`
	Schema model.PortfolioSchema `json:"schema"`
}

type GeneratorOption func(*Generator)

func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRateLimit allows r generations per second with the given burst.
func WithRateLimit(r float64, burst int) GeneratorOption {
	return func(g *Generator) {
		if r > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
		}
	}
}

// WithCreator stores each generated document.
func WithCreator(c Creator) GeneratorOption {
	return func(g *Generator) { g.creator = c }
}

func WithGeneratorLogger(log *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.log = log }
}

type Generator struct {
	backend GenerationBackend
	creator Creator
	timeout time.Duration
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewGenerator(backend GenerationBackend, opts ...GeneratorOption) *Generator {
	g := &Generator{backend: backend, timeout: DefaultGenerationTimeout}
	for _, o := range opts {
		o(g)
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	return g
}

// Generate asks the backend for a portfolio and normalizes the answer. The
// call is abandoned after the generation timeout.
func (g *Generator) Generate(ctx context.Context, resumeMarkdown string) (Generation, error) {
	if strings.TrimSpace(resumeMarkdown) == "" {
		return Generation{}, ErrEmptyResume
	}
	if g.limiter != nil && !g.limiter.Allow() {
		return Generation{}, ErrRateLimited
	}

	gctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	doc, err := g.backend.Generate(gctx, resumeMarkdown)
	if err != nil {
		if isTimeout(gctx, ctx, err) {
			g.log.Warn("generation timed out", zap.Duration("timeout", g.timeout))
			return Generation{}, ErrGenerationTimeout
		}
		return Generation{}, fmt.Errorf("generate portfolio: %w", err)
	}
	g.log.Info("portfolio generated", zap.Duration("duration", time.Since(start)))

	out := Generation{Schema: schema.Normalize(doc)}
	if g.creator != nil {
		id, err := g.creator.Create(ctx, doc)
		if err != nil {
			return Generation{}, fmt.Errorf("store generated portfolio: %w", err)
		}
		out.ID = id
	}
	return out, nil
}

// isTimeout reports whether err came from the generation deadline rather
// than from the caller giving up.
func isTimeout(gctx, parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(gctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
