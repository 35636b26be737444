package input

import (
	"context"

	"formfill-agent/internal/domain/entity"
)

// FormFiller is the single operation exposed to hosts (MCP, CLI). It never
// returns an error: every failure is reported inside the response.
type FormFiller interface {
	FillFormAndCheck(ctx context.Context, req entity.FormFillRequest) entity.FormFillResponse
	ComposeTask(req entity.FormFillRequest) (entity.RenderedTask, error)
	ClassifyTranscript(t entity.Transcript, model string) entity.FormFillResponse
}
