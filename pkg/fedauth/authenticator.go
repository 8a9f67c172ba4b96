package fedauth

import (
	"context"
	"net/http"
)

// ServerAuthenticator wraps an Executor and delivers every result on a fixed
// completion context.
type ServerAuthenticator struct {
	Executor *Executor
	Queue    Dispatcher
}

// NewServerAuthenticator returns an authenticator over executor that
// delivers on MainQueue. A nil executor gets NewExecutor().
func NewServerAuthenticator(executor *Executor) *ServerAuthenticator {
	if executor == nil {
		executor = NewExecutor()
	}
	return &ServerAuthenticator{Executor: executor, Queue: MainQueue()}
}

func (a *ServerAuthenticator) queue() Dispatcher { return queueOrMain(a.Queue) }

// fail delivers err on the completion context.
func fail[T any](d Dispatcher, handler func(T, error), err error) {
	d.Dispatch(func() {
		var zero T
		handler(zero, envelope(err))
	})
}

// Execute runs req and hands the decoded model to handler on the completion
// context. A missing model becomes the carried error, or ErrUndefined when
// none was carried, so the handler always sees either a value or an error.
func Execute[T any](ctx context.Context, a *ServerAuthenticator, req *OutboundRequest, handler func(T, error)) {
	q := a.queue()
	CreateTask(ctx, a.Executor, req, func(model *T, _ *http.Response, err error) {
		q.Dispatch(func() {
			if model != nil {
				handler(*model, nil)
				return
			}
			var zero T
			if err != nil {
				handler(zero, envelope(err))
				return
			}
			handler(zero, ErrUndefined)
		})
	})
}
