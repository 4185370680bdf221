// Package server pins a *tile.Tiler to a single goroutine behind a
// request/response channel pair, the same shape the teacher's
// Manager/Session pairing uses to serialize access to per-client state,
// adapted here to the engine's single-writer requirement (spec §5: at most
// one command in flight at a time).
package server

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pop-os/tiler/internal/logging"
	"github.com/pop-os/tiler/ipc"
	"github.com/pop-os/tiler/tile"
)

// job is one submitted request awaiting a response on its own channel.
type job struct {
	req  ipc.Request
	resp chan result
}

type result struct {
	events []tile.Event
	err    error
}

// Worker owns a *tile.Tiler and runs every command against it on a single
// goroutine, so commands from concurrent Submit callers are serialized in
// arrival order without the Tiler's own mutex ever contending across
// unrelated goroutines mid-command.
type Worker struct {
	tiler *tile.Tiler
	log   *zerolog.Logger

	jobs      chan job
	done      chan struct{}
	closeOnce sync.Once
}

// NewWorker constructs a Worker around a fresh Tiler. Run must be called to
// start processing submitted requests.
func NewWorker(log *zerolog.Logger) *Worker {
	if log == nil {
		disabled := zerolog.Nop()
		log = &disabled
	}
	return &Worker{
		tiler: tile.NewTiler(log),
		log:   log,
		jobs:  make(chan job),
		done:  make(chan struct{}),
	}
}

// Run processes submitted jobs until ctx is cancelled or Close is called,
// then closes done so any in-flight Submit calls unblock with ErrClosed.
// Intended to be supervised by an errgroup alongside the ipc read loop, so
// either one exiting brings the daemon down cleanly.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j, ok := <-w.jobs:
			if !ok {
				return nil
			}
			events, err := ipc.Apply(w.tiler, j.req)
			select {
			case j.resp <- result{events: events, err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Close stops Run, causing it to return nil. Idempotent and safe to call
// from any goroutine; typically deferred by whatever feeds Submit once its
// own input is exhausted.
func (w *Worker) Close() {
	w.closeOnce.Do(func() { close(w.jobs) })
}

// ErrClosed is returned by Submit once the worker has stopped.
var ErrClosed = &ClosedError{}

// ClosedError indicates the worker's request channel is no longer being
// serviced, distinct from a request that the engine itself rejected.
type ClosedError struct{}

func (*ClosedError) Error() string { return "server: worker closed" }

// Submit sends req to the worker and blocks for its response. Returns
// ErrClosed if the worker has stopped before the request could be
// delivered or answered, and ctx.Err() if ctx is cancelled first.
func (w *Worker) Submit(ctx context.Context, req ipc.Request) ([]tile.Event, error) {
	select {
	case <-w.done:
		return nil, ErrClosed
	default:
	}

	resp := make(chan result, 1)
	select {
	case w.jobs <- job{req: req, resp: resp}:
	case <-w.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-resp:
		return r.events, r.err
	case <-w.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Serve wires a Worker's Run loop together with an ipc read/dispatch/write
// loop under one errgroup: the read loop submits every decoded request to
// the worker and encodes its response events, and either goroutine
// returning ends both (the read loop's context is cancelled alongside the
// worker's).
func Serve(ctx context.Context, w *Worker, dec *ipc.Decoder, enc *ipc.Encoder) error {
	g, gctx := errgroup.WithContext(ctx)
	log := logging.FromContext(gctx)

	g.Go(func() error {
		return w.Run(gctx)
	})

	g.Go(func() error {
		defer w.Close()
		for {
			req, err := dec.Next()
			if err != nil {
				if err == ipc.ErrClosed {
					return nil
				}
				return err
			}
			events, err := w.Submit(gctx, req)
			if err != nil {
				log.Error().Err(err).Str("request_type", string(req.Type)).Msg("server: request failed")
				continue
			}
			if err := enc.EncodeAll(events); err != nil {
				return err
			}
		}
	})

	return g.Wait()
}
