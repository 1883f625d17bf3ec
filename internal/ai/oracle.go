package ai

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/cv-ranker/internal/resilience"
	"github.com/spigell/cv-ranker/internal/utils"
)

// ErrOracleUnavailable marks every degraded verdict.
var ErrOracleUnavailable = errors.New("oracle unavailable")

const (
	defaultMaxLogLength = 200
	defaultTimeout      = 60 * time.Second
	operation           = "oracle_assess"
)

//go:embed system.md
var systemTemplate string

//go:embed user.md
var userTemplate string

// Generator sends a system instruction and a single user turn to a provider.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Model() string
	Provider() string
	Classify(err error) resilience.ErrorClassification
}

// Verdict is the oracle reply for one candidate. A verdict with a non-nil Err
// is degraded and carries no usable text.
type Verdict struct {
	Text string
	Err  error
}

// OK reports whether the oracle produced a reply.
func (v Verdict) OK() bool { return v.Err == nil }

// Degraded builds a verdict for a failed oracle call.
func Degraded(err error) Verdict {
	if err == nil {
		err = errors.New("no verdict")
	}
	if !errors.Is(err, ErrOracleUnavailable) {
		err = fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	return Verdict{Err: err}
}

// OracleConfig tunes calls to the scoring service.
type OracleConfig struct {
	Timeout           time.Duration
	RequestsPerMinute float64
	MaxLogLength      int
}

// Oracle asks a Generator how well a CV fits a job description.
type Oracle struct {
	generator Generator
	executor  *resilience.Executor
	limiter   *rate.Limiter
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

func NewOracle(generator Generator, executor *resilience.Executor, cfg OracleConfig, logger *zap.Logger) *Oracle {
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig(), logger)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), 1)
	}

	return &Oracle{
		generator: generator,
		executor:  executor,
		limiter:   limiter,
		timeout:   cfg.Timeout,
		maxLogLen: cfg.MaxLogLength,
		logger:    logger,
	}
}

// Assess never returns an error: failures are folded into a degraded Verdict
// so one bad call cannot sink a whole batch.
func (o *Oracle) Assess(ctx context.Context, jobDescription, cvText string) Verdict {
	if o == nil || o.generator == nil {
		return Degraded(errors.New("oracle is not configured"))
	}

	system, user := BuildMessages(jobDescription, cvText)

	o.logger.Debug("oracle request",
		zap.Int("prompt_length", utf8.RuneCountInString(user)),
		zap.String("prompt_preview", utils.TruncateForLog(user, o.maxLogLen)),
	)

	var raw string
	err := o.executor.Execute(ctx, operation, func(ctx context.Context) error {
		if err := o.limiter.Wait(ctx); err != nil {
			return err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		text, err := o.generator.Generate(attemptCtx, system, user)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return errors.New("empty response")
		}
		raw = text
		return nil
	}, o.generator.Classify)
	if err != nil {
		o.logger.Warn("oracle call failed", zap.Error(err))
		return Degraded(err)
	}

	o.logger.Debug("oracle response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, o.maxLogLen)),
	)

	return Verdict{Text: raw}
}

// Model returns the model name of the underlying generator.
func (o *Oracle) Model() string {
	if o == nil || o.generator == nil {
		return ""
	}
	return o.generator.Model()
}

// BuildMessages renders the system and user turns for a candidate.
func BuildMessages(jobDescription, cvText string) (string, string) {
	system := strings.TrimSpace(systemTemplate)
	user := userTemplate
	if strings.TrimSpace(user) == "" {
		user = "Job Description: {{JOB_DESCRIPTION}}\n\nCV: {{CANDIDATE_CV}}\n\nProvide an overall suitability score out of 100."
	}
	user = strings.ReplaceAll(user, "{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription))
	user = strings.ReplaceAll(user, "{{CANDIDATE_CV}}", strings.TrimSpace(cvText))
	return system, strings.TrimSpace(user)
}
