package willitserver

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// Node is a renderable UI node produced on the server. Its contents are
// never inspected, only its ability to render.
type Node interface {
	Render(ctx context.Context, w io.Writer) error
}

// Logger receives the diagnostics emitted when a value may not be
// serializable. *zap.Logger satisfies it.
type Logger interface {
	Error(msg string, fields ...zap.Field)
}

// Observer is notified of the outcome of every boundary check.
type Observer interface {
	Observe(ctx context.Context, function string, dir Direction, passed bool)
}
