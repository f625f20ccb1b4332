// Package optimize turns a job description and resume into an ATS-optimized resume
// by prompting an LLM and reconciling its reply.
package optimize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/ats-resume-builder/internal/llm"
	"github.com/jonathan/ats-resume-builder/internal/prompts"
	"github.com/jonathan/ats-resume-builder/internal/types"
)

// recordTimeout bounds history and event side effects after a request completes.
const recordTimeout = 5 * time.Second

// JobFetcher loads a job description from a posting URL.
type JobFetcher interface {
	FetchJobDescription(ctx context.Context, url string) (string, error)
}

// Recorder persists completed runs.
type Recorder interface {
	RecordRun(ctx context.Context, run *types.RunDetail) error
}

// Publisher announces completed runs.
type Publisher interface {
	PublishOptimization(ctx context.Context, run *types.RunSummary) error
}

// TokenCounter estimates the token count of text for a model.
type TokenCounter func(model, text string) (int, error)

// Options configures a Service. Only Client is required.
type Options struct {
	Client          llm.Client
	Tier            llm.ModelTier
	MaxPromptTokens int
	Fetcher         JobFetcher
	Recorder        Recorder
	Publisher       Publisher
	CountTokens     TokenCounter
	Now             func() time.Time
}

// Result is the outcome of one optimization.
type Result struct {
	Resume       *types.OptimizedResume
	RunID        uuid.UUID
	Model        string
	Fallback     bool
	PromptTokens int
	Duration     time.Duration
}

// Service runs optimizations against an LLM client.
type Service struct {
	client          llm.Client
	tier            llm.ModelTier
	maxPromptTokens int
	fetcher         JobFetcher
	recorder        Recorder
	publisher       Publisher
	countTokens     TokenCounter
	now             func() time.Time
}

// NewService creates a Service from opts.
func NewService(opts Options) (*Service, error) {
	if opts.Client == nil {
		return nil, errors.New("optimize: llm client is required")
	}
	s := &Service{
		client:          opts.Client,
		tier:            opts.Tier,
		maxPromptTokens: opts.MaxPromptTokens,
		fetcher:         opts.Fetcher,
		recorder:        opts.Recorder,
		publisher:       opts.Publisher,
		countTokens:     opts.CountTokens,
		now:             opts.Now,
	}
	if s.tier == "" {
		s.tier = llm.TierStandard
	}
	if s.countTokens == nil {
		s.countTokens = llm.CountTokens
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Model returns the model name used for requests.
func (s *Service) Model() string {
	return s.client.GetModel(s.tier)
}

// Optimize validates req, prompts the model and reconciles its reply. Invalid
// input is rejected before any upstream call. A reply that cannot be parsed
// still produces a result, with Fallback set.
func (s *Service) Optimize(ctx context.Context, req types.OptimizeRequest) (*Result, error) {
	req.Normalize()

	if req.JobDescription == "" && req.JobDescriptionURL != "" && s.fetcher != nil {
		jd, err := s.fetcher.FetchJobDescription(ctx, req.JobDescriptionURL)
		if err != nil {
			return nil, &FetchError{URL: req.JobDescriptionURL, Cause: err}
		}
		req.JobDescription = jd
		req.Normalize()
	}

	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	model := s.Model()
	promptTokens := 0
	if s.maxPromptTokens > 0 {
		promptTokens, err = s.countTokens(model, prompt.System+"\n"+prompt.User)
		if err != nil {
			slog.WarnContext(ctx, "token count unavailable, skipping prompt size check", "error", err)
		} else if promptTokens > s.maxPromptTokens {
			return nil, &PromptTooLargeError{Tokens: promptTokens, Limit: s.maxPromptTokens}
		}
	}

	runID := uuid.New()
	start := s.now()
	slog.InfoContext(ctx, "optimizing resume",
		"run_id", runID,
		"model", model,
		"job_chars", len(req.JobDescription),
		"resume_chars", len(req.ResumeText),
		"original_format", req.OriginalFormat,
	)

	raw, err := s.client.GenerateContent(ctx, prompt, s.tier)
	if err != nil {
		return nil, err
	}

	resume, fallback, reason := Reconcile(raw)
	if fallback {
		slog.WarnContext(ctx, "model reply not usable as JSON, returning raw text",
			"run_id", runID,
			"reason", reason,
			"reply_chars", len(raw),
		)
	}

	result := &Result{
		Resume:       resume,
		RunID:        runID,
		Model:        model,
		Fallback:     fallback,
		PromptTokens: promptTokens,
		Duration:     s.now().Sub(start),
	}
	slog.InfoContext(ctx, "resume optimized",
		"run_id", runID,
		"ats_score", resume.ATSScore,
		"sections", len(resume.Sections),
		"fallback", fallback,
		"duration_ms", result.Duration.Milliseconds(),
	)

	s.record(ctx, result, JobDigest(req.JobDescription))
	return result, nil
}

// record stores and announces a run. Failures are logged only.
func (s *Service) record(ctx context.Context, result *Result, jobDigest string) {
	if s.recorder == nil && s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	detail := &types.RunDetail{
		RunSummary: types.RunSummary{
			ID:           result.RunID,
			Model:        result.Model,
			ATSScore:     result.Resume.ATSScore,
			Fallback:     result.Fallback,
			PromptTokens: result.PromptTokens,
			DurationMS:   result.Duration.Milliseconds(),
			JobDigest:    jobDigest,
			CreatedAt:    s.now().UTC(),
		},
		Result: result.Resume,
	}

	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, detail); err != nil {
			slog.WarnContext(ctx, "failed to record run", "run_id", result.RunID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOptimization(ctx, &detail.RunSummary); err != nil {
			slog.WarnContext(ctx, "failed to publish run event", "run_id", result.RunID, "error", err)
		}
	}
}

// BuildPrompt renders the system and user prompts for req.
func BuildPrompt(req types.OptimizeRequest) (llm.Prompt, error) {
	system, err := prompts.Get(prompts.OptimizeFile, prompts.KeyOptimizeSystem)
	if err != nil {
		return llm.Prompt{}, fmt.Errorf("failed to load system prompt: %w", err)
	}

	formatNote := ""
	if req.OriginalFormat != "" {
		formatNote, err = prompts.Render(prompts.OptimizeFile, prompts.KeyFormatNote, map[string]string{
			"OriginalFormat": req.OriginalFormat,
		})
		if err != nil {
			return llm.Prompt{}, fmt.Errorf("failed to render format note: %w", err)
		}
	}

	user, err := prompts.Render(prompts.OptimizeFile, prompts.KeyOptimizeUser, map[string]string{
		"FormatNote":     formatNote,
		"JobDescription": req.JobDescription,
		"ResumeText":     req.ResumeText,
	})
	if err != nil {
		return llm.Prompt{}, fmt.Errorf("failed to render user prompt: %w", err)
	}

	return llm.Prompt{System: system, User: user}, nil
}

// JobDigest returns the hex sha256 of a job description.
func JobDigest(jobDescription string) string {
	sum := sha256.Sum256([]byte(jobDescription))
	return hex.EncodeToString(sum[:])
}

func validateRequest(req *types.OptimizeRequest) error {
	if req.JobDescription == "" || req.ResumeText == "" {
		return &ValidationError{Message: MissingInputMessage}
	}
	if err := req.Validate(); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ValidationError{
				Message: fmt.Sprintf("invalid field %s", fieldErrs[0].Field()),
				Cause:   err,
			}
		}
		return &ValidationError{Message: "invalid request", Cause: err}
	}
	return nil
}
