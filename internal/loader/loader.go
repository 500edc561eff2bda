// Package loader runs the fetch that fills a list binding. It enforces at
// most one outstanding request, commits only fully decoded pages and stops
// touching the binding once the owning screen is closed.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"uptotimenews/internal/binding"
	"uptotimenews/internal/metrics"
	"uptotimenews/internal/model"
	"uptotimenews/pkg/news"

	"golang.org/x/sync/singleflight"
)

var ErrClosed = errors.New("loader closed")

type CommitMode string

const (
	// CommitAppend places fetched records after the ones already shown.
	CommitAppend CommitMode = "append"
	// CommitReplace makes the list exactly the fetched page.
	CommitReplace CommitMode = "replace"
)

func ParseCommitMode(s string) (CommitMode, error) {
	switch mode := CommitMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return CommitAppend, nil
	case CommitAppend, CommitReplace:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown commit mode %q", s)
	}
}

// Result is the outcome of one Start call. Count is the list size after
// the attempt and Appended the number of records the fetch contributed.
// Shared reports that the fetch served more than one Start call.
type Result struct {
	Count    int
	Appended int
	Err      error
	Shared   bool
}

type Loader struct {
	client     news.NewsClient
	list       *binding.ListBinding
	mode       CommitMode
	onComplete func(Result)

	group  singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   model.LoadState
	lastErr error
	pending int
	closed  bool
}

type Option func(*Loader)

func WithCommitMode(mode CommitMode) Option {
	return func(l *Loader) {
		l.mode = mode
	}
}

// WithOnComplete registers fn to run once per finished fetch, after the
// commit and before Start's channels receive the result.
func WithOnComplete(fn func(Result)) Option {
	return func(l *Loader) {
		l.onComplete = fn
	}
}

func New(client news.NewsClient, list *binding.ListBinding, opts ...Option) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		client: client,
		list:   list,
		mode:   CommitAppend,
		ctx:    ctx,
		cancel: cancel,
		state:  model.StateIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start begins a fetch without blocking. If a fetch is already in flight
// the call joins it instead of sending another request. The returned
// channel yields exactly one Result and is then closed.
func (l *Loader) Start() <-chan Result {
	out := make(chan Result, 1)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		out <- Result{Count: l.list.Count(), Err: ErrClosed}
		close(out)
		return out
	}
	if l.pending > 0 {
		metrics.CoalescedTotal.Inc()
	}
	l.pending++
	l.state = model.StateLoading
	l.wg.Add(1)
	l.mu.Unlock()

	ch := l.group.DoChan(l.client.Name(), func() (interface{}, error) {
		return l.run(), nil
	})

	go func() {
		defer l.wg.Done()
		defer close(out)

		r := <-ch
		res := r.Val.(Result)
		res.Shared = r.Shared

		l.mu.Lock()
		l.pending--
		// A Start that joined a fetch after it recorded its outcome left
		// the state at loading; settle it from the result it received.
		if l.pending == 0 && l.state == model.StateLoading {
			l.settle(res.Err)
		}
		l.mu.Unlock()

		out <- res
	}()

	return out
}

// State reports where the list stands and, when failed, why.
func (l *Loader) State() (model.LoadState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state, l.lastErr
}

// Close cancels any request in flight and waits for outstanding Start
// calls to finish. After Close returns the loader never touches the
// binding again. Close must not be called from a surface's DataChanged.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
}

func (l *Loader) run() Result {
	source := l.client.Name()

	start := time.Now()
	articles, err := l.client.Fetch(l.ctx)
	metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()

	if closed {
		metrics.FetchTotal.WithLabelValues(source, metrics.OutcomeCanceled).Inc()
		slog.Info("fetch finished after close, discarding", "source", source)
		return Result{Count: l.list.Count(), Err: ErrClosed}
	}

	if err != nil {
		metrics.FetchTotal.WithLabelValues(source, outcome(err)).Inc()
		slog.Error("error fetching articles", "source", source, "error", err)

		l.mu.Lock()
		l.settle(err)
		l.mu.Unlock()

		res := Result{Count: l.list.Count(), Err: err}
		l.complete(res)
		return res
	}

	next := articles
	if l.mode == CommitAppend {
		next = append(l.list.Snapshot(), articles...)
	}

	l.mu.Lock()
	l.settle(nil)
	l.mu.Unlock()

	l.list.ReplaceAll(next)
	metrics.FetchTotal.WithLabelValues(source, metrics.OutcomeSuccess).Inc()
	metrics.ListSize.Set(float64(len(next)))
	slog.Info("fetch complete", "source", source, "fetched", len(articles), "count", len(next))

	res := Result{Count: len(next), Appended: len(articles)}
	l.complete(res)
	return res
}

// settle records the final state of a fetch. l.mu must be held.
func (l *Loader) settle(err error) {
	if err != nil {
		l.state = model.StateFailed
		l.lastErr = err
		return
	}
	l.state = model.StatePopulated
	l.lastErr = nil
}

func (l *Loader) complete(res Result) {
	if l.onComplete != nil {
		l.onComplete(res)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case errors.Is(err, news.ErrMalformedResponse):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeTransport
	}
}
