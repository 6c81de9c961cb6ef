// Package query orchestrates the full pipeline for one regulatory question:
// retrieve context, extract field candidates, populate the template,
// validate it, and assemble the audit trail.
package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"coreport/internal/audittrail"
	"coreport/internal/auditlog"
	"coreport/internal/extraction"
	"coreport/internal/query/metrics"
	"coreport/internal/retrieval"
	"coreport/internal/template"
	"coreport/internal/validation"
	"coreport/pkg/circuit"
	"coreport/pkg/domainerrors"
	"coreport/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Retriever fetches regulatory passages relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]retrieval.Document, error)
}

// Extractor maps a question plus retrieved context onto field candidates.
type Extractor interface {
	Extract(ctx context.Context, question, scenario string, docs []retrieval.Document) (*extraction.Extraction, error)
}

// ProcessRequest carries one validated query through the pipeline.
type ProcessRequest struct {
	Question     string
	Scenario     string
	TemplateType string
	Currency     string
}

// ProcessResult is the assembled outcome of one pipeline run.
type ProcessResult struct {
	TemplateType      string
	Population        *template.Population
	ValidationResults []validation.Result
	AuditTrail        []audittrail.Entry
	RetrievedSources  []retrieval.Document
	OverallReasoning  string
	Warnings          []string
	SubmissionReady   bool
	ProcessedAt       time.Time
}

// Service runs the pipeline. Collaborator calls share a weighted semaphore
// so a burst of requests cannot overwhelm the retrieval and extraction
// backends.
type Service struct {
	registry  *template.Registry
	engine    *validation.Engine
	builder   *audittrail.Builder
	retriever Retriever
	extractor Extractor
	audit     *auditlog.Publisher

	sem             *semaphore.Weighted
	breaker         *circuit.Breaker
	timeout         time.Duration
	defaultCurrency string

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Config struct {
	CollaboratorTimeout  time.Duration
	MaxCollaboratorCalls int64
	DefaultCurrency      string
}

func NewService(
	registry *template.Registry,
	engine *validation.Engine,
	builder *audittrail.Builder,
	retriever Retriever,
	extractor Extractor,
	audit *auditlog.Publisher,
	cfg Config,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	if cfg.MaxCollaboratorCalls <= 0 {
		cfg.MaxCollaboratorCalls = 4
	}
	if cfg.CollaboratorTimeout <= 0 {
		cfg.CollaboratorTimeout = 30 * time.Second
	}
	return &Service{
		registry:        registry,
		engine:          engine,
		builder:         builder,
		retriever:       retriever,
		extractor:       extractor,
		audit:           audit,
		sem:             semaphore.NewWeighted(cfg.MaxCollaboratorCalls),
		breaker:         circuit.New("extraction"),
		timeout:         cfg.CollaboratorTimeout,
		defaultCurrency: cfg.DefaultCurrency,
		logger:          logger,
		metrics:         m,
	}
}

// Process runs the pipeline end to end. A collaborator that times out
// degrades the run (the template is populated from whatever arrived); a
// collaborator that is unreachable fails it.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	start := time.Now()
	requestID := requestcontext.RequestID(ctx)

	var warnings []string

	docs, warn, err := s.retrieve(ctx, req.Question, requestID)
	if err != nil {
		return nil, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	extracted, warn, err := s.extract(ctx, req, docs, requestID)
	if err != nil {
		return nil, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}
	warnings = append(warnings, extracted.Warnings...)

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	popStart := time.Now()
	pop := template.Populate(s.registry, extracted.Candidates, currency)
	s.metrics.ObserveStageLatency("populate", time.Since(popStart))

	valStart := time.Now()
	results := s.engine.Validate(pop.Record)
	s.metrics.ObserveStageLatency("validate", time.Since(valStart))

	trail := s.builder.Build(pop, results)
	ready := validation.SubmissionReady(results)

	result := &ProcessResult{
		TemplateType:      req.TemplateType,
		Population:        pop,
		ValidationResults: results,
		AuditTrail:        trail,
		RetrievedSources:  docs,
		OverallReasoning:  extracted.OverallReasoning,
		Warnings:          warnings,
		SubmissionReady:   ready,
		ProcessedAt:       requestcontext.Now(ctx),
	}

	if err := s.audit.Emit(ctx, auditlog.Event{
		RequestID:       requestID,
		Subject:         requestcontext.Subject(ctx),
		Action:          auditlog.ActionQueryProcessed,
		TemplateType:    req.TemplateType,
		Currency:        pop.Record.Currency,
		SubmissionReady: ready,
		FieldsPopulated: pop.Record.PopulatedCount(),
		SourcesUsed:     len(docs),
		FailedErrors:    len(validation.FailedErrors(results)),
	}); err != nil {
		// Audit persistence must not fail the caller's result.
		s.logger.ErrorContext(ctx, "audit event emit failed",
			"request_id", requestID,
			"error", err,
		)
	}

	s.metrics.IncrementOutcome(req.TemplateType, ready)
	s.metrics.ObserveProcessLatency(time.Since(start))

	return result, nil
}

func (s *Service) retrieve(ctx context.Context, question, requestID string) ([]retrieval.Document, string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, "", domainerrors.Wrap(domainerrors.CodeUnavailable, "retrieval capacity unavailable", err)
	}
	defer s.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	docs, err := s.retriever.Retrieve(callCtx, question)
	s.metrics.ObserveStageLatency("retrieve", time.Since(start))

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "retrieval timed out, proceeding without context",
				"request_id", requestID,
			)
			return nil, "regulatory context retrieval timed out", nil
		}
		return nil, "", domainerrors.Wrap(domainerrors.CodeUnavailable, "retrieval service unreachable", err)
	}
	return docs, "", nil
}

func (s *Service) extract(ctx context.Context, req ProcessRequest, docs []retrieval.Document, requestID string) (*extraction.Extraction, string, error) {
	if s.breaker.IsOpen() {
		s.logger.WarnContext(ctx, "extraction circuit open, proceeding without candidates",
			"request_id", requestID,
		)
		return &extraction.Extraction{}, "field extraction temporarily unavailable", nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, "", domainerrors.Wrap(domainerrors.CodeUnavailable, "extraction capacity unavailable", err)
	}
	defer s.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	extracted, err := s.extractor.Extract(callCtx, req.Question, req.Scenario, docs)
	s.metrics.ObserveStageLatency("extract", time.Since(start))

	if err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "extraction circuit opened",
				"request_id", requestID,
			)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "extraction timed out, proceeding without candidates",
				"request_id", requestID,
			)
			return &extraction.Extraction{}, "field extraction timed out", nil
		}
		return nil, "", err
	}

	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "extraction circuit closed",
			"request_id", requestID,
		)
	}
	return extracted, "", nil
}
