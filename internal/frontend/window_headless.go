//go:build headless

package frontend

import (
	"context"
	"errors"

	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrogolib/log"
)

// ErrWindowUnavailable is returned when the window frontend is requested
// from a headless build.
var ErrWindowUnavailable = errors.New("window frontend is not available in headless builds")

func runWindow(_ context.Context, _ *log.Logger, _ *interpreter.Interpreter, _ Options) error {
	return ErrWindowUnavailable
}
