package stage

import (
	"context"

	"quill/internal/articles"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *articles.Item) error
	Execute(context.Context, *articles.Item) error
	HealthCheck(context.Context) Health
}
