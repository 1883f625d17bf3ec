// Package batch scores a set of résumés against one job description.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-ranker/internal/ai"
	"github.com/spigell/cv-ranker/internal/candidate"
	"github.com/spigell/cv-ranker/internal/contact"
	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/observability/metrics"
	"github.com/spigell/cv-ranker/internal/scoring"
	"github.com/spigell/cv-ranker/internal/tiebreak"
)

// ErrValidation is returned before any work starts when the input is unusable.
var ErrValidation = errors.New("validation error")

// SourceDocumentError marks records whose résumé could not be read.
const SourceDocumentError = "document-error"

type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

type Assessor interface {
	Assess(ctx context.Context, jobDescription, cvText string) ai.Verdict
}

type Recorder interface {
	Record(ctx context.Context, rec candidate.Record) error
}

type Adjuster interface {
	Draw(keys []string) tiebreak.Adjustments
}

type Metrics interface {
	StartDocument()
	FinishDocument(provider, outcome string, duration time.Duration)
	OracleDegraded(provider string)
	StoreFailed()
	FinishBatch()
}

type Config struct {
	Workers  int
	Provider string
}

type Deps struct {
	Extractor  TextExtractor
	Oracle     Assessor
	Store      Recorder
	TieBreaker Adjuster
	Metrics    Metrics
	Logger     *zap.Logger
}

// Result is a finished batch. Records are ordered by score, highest first.
type Result struct {
	ID      string
	Seed    uint64
	Spread  float64
	Records []*candidate.Record
}

// Coordinator runs the scoring pipeline for every document of a batch on a
// bounded pool of workers.
type Coordinator struct {
	workers    int
	provider   string
	extractor  TextExtractor
	oracle     Assessor
	store      Recorder
	tieBreaker Adjuster
	metrics    Metrics
	logger     *zap.Logger
}

func New(cfg Config, deps Deps) (*Coordinator, error) {
	if deps.Extractor == nil {
		return nil, errors.New("batch: extractor is required")
	}
	if deps.Oracle == nil {
		return nil, errors.New("batch: oracle is required")
	}
	if deps.Store == nil {
		return nil, errors.New("batch: store is required")
	}
	if deps.TieBreaker == nil {
		deps.TieBreaker = tiebreak.New(tiebreak.DefaultSpread, 0)
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Coordinator{
		workers:    workers,
		provider:   cfg.Provider,
		extractor:  deps.Extractor,
		oracle:     deps.Oracle,
		store:      deps.Store,
		tieBreaker: deps.TieBreaker,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}, nil
}

// Run scores every document and returns one record per document. Per-document
// failures are folded into the record; only invalid input or cancellation of
// ctx are reported as errors.
func (c *Coordinator) Run(ctx context.Context, jobDescription string, docs []candidate.Document) (*Result, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("%w: job description is empty", ErrValidation)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents submitted", ErrValidation)
	}

	keys := make([]string, len(docs))
	for i, doc := range docs {
		keys[i] = tiebreak.Key(i, doc.Name())
	}
	adjustments := c.tieBreaker.Draw(keys)

	id := uuid.NewString()
	log := c.logger.With(logger.BatchFields(id)...)
	log.Info("scoring batch",
		zap.Int("documents", len(docs)),
		zap.Int("workers", c.workers),
		zap.Uint64("tie_break_seed", adjustments.Seed),
		zap.Float64("tie_break_spread", adjustments.Spread),
	)

	started := time.Now()
	records := make([]*candidate.Record, len(docs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, doc := range docs {
		g.Go(func() error {
			records[i] = c.score(gCtx, log, jobDescription, i, doc, adjustments.For(keys[i]))
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Score > records[b].Score
	})

	degraded := 0
	for _, rec := range records {
		if rec.Degraded() {
			degraded++
		}
	}

	c.metrics.FinishBatch()
	log.Info("batch finished",
		zap.Int("records", len(records)),
		zap.Int("degraded", degraded),
		zap.Duration("duration", time.Since(started)),
	)

	result := &Result{
		ID:      id,
		Seed:    adjustments.Seed,
		Spread:  adjustments.Spread,
		Records: records,
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("batch interrupted: %w", err)
	}
	return result, nil
}

func (c *Coordinator) score(ctx context.Context, batchLog *zap.Logger, jobDescription string, index int, doc candidate.Document, adjustment float64) *candidate.Record {
	started := time.Now()
	c.metrics.StartDocument()

	rec := &candidate.Record{
		Index:      index,
		Name:       doc.Name(),
		Email:      candidate.NoEmail,
		Adjustment: adjustment,
	}
	log := batchLog.With(logger.CandidateFields(index, rec.Name)...)

	outcome := c.assess(ctx, log, jobDescription, doc, rec)
	rec.Score = rec.BaseScore + rec.Adjustment

	if err := c.store.Record(ctx, *rec); err != nil {
		log.Error("storing candidate", zap.Error(err))
		c.metrics.StoreFailed()
		rec.Err = joinErr(rec.Err, fmt.Sprintf("store: %v", err))
	}

	c.metrics.FinishDocument(c.provider, outcome, time.Since(started))
	log.Debug("candidate scored",
		zap.Float64("score", rec.Score),
		zap.Float64("base_score", rec.BaseScore),
		zap.String("score_source", rec.ScoreSource),
	)

	return rec
}

// assess fills the oracle related fields of rec and returns the metrics outcome.
func (c *Coordinator) assess(ctx context.Context, log *zap.Logger, jobDescription string, doc candidate.Document, rec *candidate.Record) string {
	text, err := c.extractor.Extract(doc.Filename, doc.Data)
	if err != nil {
		log.Warn("extracting document text", zap.Error(err))
		rec.ScoreSource = SourceDocumentError
		rec.Err = err.Error()
		return metrics.OutcomeDegraded
	}

	rec.Email = contact.EmailOrDefault(text)

	verdict := c.oracle.Assess(ctx, jobDescription, text)
	parsed := scoring.Parse(verdict)

	rec.BaseScore = parsed.Score
	rec.ScoreSource = string(parsed.Source)
	rec.Verdict = verdict.Text

	switch {
	case !verdict.OK():
		c.metrics.OracleDegraded(c.provider)
		rec.Err = verdict.Err.Error()
		return metrics.OutcomeDegraded
	case parsed.Err() != nil:
		log.Warn("score not found in verdict", zap.String("score_source", rec.ScoreSource))
		rec.Err = parsed.Err().Error()
		return metrics.OutcomeUnparseable
	default:
		return metrics.OutcomeScored
	}
}

func joinErr(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + "; " + next
}

type noopMetrics struct{}

func (noopMetrics) StartDocument()                               {}
func (noopMetrics) FinishDocument(string, string, time.Duration) {}
func (noopMetrics) OracleDegraded(string)                        {}
func (noopMetrics) StoreFailed()                                 {}
func (noopMetrics) FinishBatch()                                 {}
