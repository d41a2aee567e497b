package analysis

import (
	"context"
	"time"

	"civicecho-be/breaker"
	"civicecho-be/logger"
	"civicecho-be/metrics"
)

//go:generate mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks

// Analyzer is an external NLP collaborator returning sentiment and entities for text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Signals, error)
}

// DefaultTimeout bounds a single remote analysis call.
const DefaultTimeout = 5 * time.Second

// Service classifies complaint text, consulting a remote Analyzer when one was
// configured at startup.
type Service struct {
	remote  Analyzer
	breaker *breaker.Breaker
	timeout time.Duration
	log     logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRemote enables sentiment/entity enrichment through a.
func WithRemote(a Analyzer) Option {
	return func(s *Service) { s.remote = a }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithBreaker overrides the default circuit breaker around the remote analyzer.
func WithBreaker(b *breaker.Breaker) Option {
	return func(s *Service) { s.breaker = b }
}

// NewService returns a keyword-only classifier unless WithRemote is given.
func NewService(log logger.Logger, opts ...Option) *Service {
	s := &Service{
		timeout: DefaultTimeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = breaker.New(breaker.Config{FailureThreshold: 5, Cooldown: time.Minute})
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	return s
}

// Enriched reports whether a remote analyzer is configured.
func (s *Service) Enriched() bool {
	return s.remote != nil
}

// Classify never fails: errors from the remote analyzer degrade to keyword-only results.
func (s *Service) Classify(ctx context.Context, text string) Result {
	if s.remote == nil {
		return Classify(text, nil)
	}

	var signals *Signals
	err := s.breaker.Execute(func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var err error
		signals, err = s.remote.Analyze(callCtx, text)
		return err
	})
	log := logger.FromContext(ctx, s.log)
	if err != nil || signals == nil {
		log.Warn("NLP analysis unavailable, using keyword classification", logger.Error(err))
		metrics.CollaboratorFallbacks.WithLabelValues("nlp").Inc()
		res := Classify(text, nil)
		res.Fallback = true
		return res
	}

	res := Classify(text, signals)
	log.Debug("NLP classification",
		logger.String("category", string(res.Category)),
		logger.String("severity", string(res.Severity)),
		logger.Strings("entities", signals.Entities),
	)
	return res
}
