package interceptor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/santhoseks/openmrs-core/internal/service"
)

const stackBufSize = 9 << 11

// Recover turns panics of a command into service.ErrPanic.
type Recover struct{}

// NewRecover will create a Recover instance.
func NewRecover() *Recover {
	return &Recover{}
}

// Intercept recovers panics from the handler.
// Note: It is better to add this as the innermost interceptor.
func (r *Recover) Intercept(operation string, handler Handler) Handler {
	return func(ctx context.Context) (err error) {
		defer func() {
			rec := recover()
			if rec != nil {
				err = service.ErrPanic
				r.logError(operation, rec)
			}
		}()

		return handler(ctx)
	}
}

// logError prints stacktrace.
func (r *Recover) logError(operation string, rec any) {
	stackBuf := make([]byte, stackBufSize)
	stackSize := runtime.Stack(stackBuf, false)
	slog.Error(fmt.Sprintf(
		"------------------------------- \n operation:[%s] \n panic: %v \n Trace:\n %s \n--------------------------------",
		operation,
		rec,
		string(stackBuf[:stackSize])),
	)
}
