package fedauth

import (
	"context"
	"encoding/json"
	"net/http"
)

// Decoder turns a response payload into a typed value.
type Decoder interface {
	Decode(data []byte, v any) error
}

// JSONDecoder decodes payloads with encoding/json.
type JSONDecoder struct{}

func (JSONDecoder) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Executor composes a Worker, a Decoder and HTTP status validation into a
// single "fetch typed model" operation.
type Executor struct {
	Worker  Worker
	Decoder Decoder
}

// NewExecutor returns an Executor over a fresh Transport and JSON decoding.
func NewExecutor(opts ...TransportOption) *Executor {
	return &Executor{
		Worker:  NewTransport(opts...),
		Decoder: JSONDecoder{},
	}
}

func (e *Executor) decoder() Decoder {
	if e.Decoder == nil {
		return JSONDecoder{}
	}
	return e.Decoder
}

// TaskHandler receives the outcome of CreateTask. A nil model with a nil
// error means the server answered 2xx with an empty body.
type TaskHandler[T any] func(model *T, resp *http.Response, err error)

// CreateTask executes req and decodes a successful body into T. The handler
// runs on the transport's goroutine.
func CreateTask[T any](ctx context.Context, e *Executor, req *OutboundRequest, handler TaskHandler[T]) {
	e.Worker.Execute(ctx, req, func(body []byte, resp *http.Response, err error) {
		if err != nil {
			handler(nil, resp, ErrDataTask.WithCause(err))
			return
		}
		if resp == nil {
			handler(nil, nil, ErrInvalidURLResponse)
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			handler(nil, resp, ErrInvalidHTTPStatusCode.withResponse(resp))
			return
		}
		if len(body) == 0 {
			handler(nil, resp, nil)
			return
		}

		model := new(T)
		if err := e.decoder().Decode(body, model); err != nil {
			handler(nil, resp, ErrDataDecoding.WithCause(err))
			return
		}
		handler(model, resp, nil)
	})
}

// Do runs one task and waits for it. A 2xx with an empty body yields a nil
// model and a nil error.
func Do[T any](ctx context.Context, e *Executor, req *OutboundRequest) (*T, *http.Response, error) {
	type result struct {
		model *T
		resp  *http.Response
		err   error
	}
	ch := make(chan result, 1)
	CreateTask(ctx, e, req, func(model *T, resp *http.Response, err error) {
		ch <- result{model: model, resp: resp, err: err}
	})
	r := <-ch
	return r.model, r.resp, r.err
}
