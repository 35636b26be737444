// Package formfill implements the fill-form-and-check operation: compose the
// instruction script, run one agent under a wall-clock budget and classify
// what comes back.
package formfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formfill-agent/internal/application/port/input"
	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/domain/entity"
	"formfill-agent/internal/usecase/classifier"
	"formfill-agent/internal/usecase/composer"
)

var _ input.FormFiller = (*Service)(nil)

type Service struct {
	agents output.AgentFactory
	logger output.LoggerPort
	// unit scales timeout_seconds; tests shrink it.
	unit time.Duration
}

func New(agents output.AgentFactory, logger output.LoggerPort) *Service {
	return &Service{
		agents: agents,
		logger: logger,
		unit:   time.Second,
	}
}

type runOutcome struct {
	transcript entity.Transcript
	err        error
}

func (s *Service) FillFormAndCheck(ctx context.Context, req entity.FormFillRequest) entity.FormFillResponse {
	req = req.WithDefaults()
	log := s.logger.WithFields(map[string]any{"url": req.URL, "model": req.Model})

	if err := req.Validate(); err != nil {
		log.Warn("Rejected request", "error", err)
		return entity.NewFormFillResponse(classifier.ClassifyError(err), req.Model)
	}

	task := composer.Compose(req)
	budget := time.Duration(req.TimeoutSeconds) * s.unit

	log.Info("Task started", "fields", len(req.Fields), "timeoutSeconds", req.TimeoutSeconds)
	start := time.Now()

	result := s.run(ctx, log, req, task, budget)

	log.Info("Task finished",
		"result", result.Result,
		"steps", len(result.Steps),
		"duration", time.Since(start).String(),
	)
	return entity.NewFormFillResponse(result, req.Model)
}

func (s *Service) run(
	ctx context.Context,
	log output.LoggerPort,
	req entity.FormFillRequest,
	task entity.RenderedTask,
	budget time.Duration,
) entity.ClassifiedResult {
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	agent, err := s.agents.NewAgent(runCtx, req.AgentSettings())
	if err != nil {
		if timedOut(ctx, runCtx) {
			return classifier.ClassifyTimeout(time.Duration(req.TimeoutSeconds) * time.Second)
		}
		log.Error("Agent construction failed", "error", err)
		return classifier.ClassifyError(fmt.Errorf("create agent: %w", err))
	}
	defer agent.Close()

	// Buffered so an abandoned agent can still deliver and exit.
	done := make(chan runOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- runOutcome{err: fmt.Errorf("agent panic: %v", r)}
			}
		}()
		transcript, err := agent.Run(runCtx, task.String())
		done <- runOutcome{transcript: transcript, err: err}
	}()

	select {
	case <-runCtx.Done():
		if timedOut(ctx, runCtx) {
			log.Warn("Agent timed out", "budget", budget.String())
			return classifier.ClassifyTimeout(time.Duration(req.TimeoutSeconds) * time.Second)
		}
		log.Warn("Agent canceled", "error", ctx.Err())
		return classifier.ClassifyError(ctx.Err())
	case out := <-done:
		if out.err != nil {
			if timedOut(ctx, runCtx) {
				return classifier.ClassifyTimeout(time.Duration(req.TimeoutSeconds) * time.Second)
			}
			log.Error("Agent run failed", "error", out.err)
			return classifier.ClassifyError(out.err)
		}
		return classifier.Classify(out.transcript)
	}
}

// timedOut reports whether runCtx hit its own deadline, as opposed to the
// caller canceling ctx.
func timedOut(parent, runCtx context.Context) bool {
	return errors.Is(runCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil
}

// ComposeTask renders the instruction script without running anything.
func (s *Service) ComposeTask(req entity.FormFillRequest) (entity.RenderedTask, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return entity.RenderedTask{}, err
	}
	return composer.Compose(req), nil
}

// ClassifyTranscript classifies an externally produced transcript.
func (s *Service) ClassifyTranscript(t entity.Transcript, model string) entity.FormFillResponse {
	return entity.NewFormFillResponse(classifier.Classify(t), model)
}
