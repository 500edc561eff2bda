package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"uptotimenews/internal/binding"
	"uptotimenews/internal/model"
	"uptotimenews/pkg/news"

	"github.com/go-playground/assert/v2"
)

type fakeClient struct {
	articles []model.Article
	err      error

	// started is closed when the first Fetch begins; release, when set,
	// holds Fetch until it is closed or the context ends.
	started    chan struct{}
	release    chan struct{}
	ignoreCtx  bool
	calls      atomic.Int32
	startedSet atomic.Bool
}

func (f *fakeClient) Name() string { return "Fake" }

func (f *fakeClient) Fetch(ctx context.Context) ([]model.Article, error) {
	f.calls.Add(1)
	if f.started != nil && f.startedSet.CompareAndSwap(false, true) {
		close(f.started)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			if !f.ignoreCtx {
				return nil, ctx.Err()
			}
		}
	}
	return f.articles, f.err
}

func countNotifications(b *binding.ListBinding) *atomic.Int32 {
	var n atomic.Int32
	b.Attach(binding.SurfaceFunc(func() { n.Add(1) }))
	return &n
}

func mediastackServer(t *testing.T, body string) news.NewsClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return news.NewMediastackClient(srv.URL)
}

func TestStartCommitsFetchedRecords(t *testing.T) {
	list := binding.New()
	notified := countNotifications(list)
	l := New(mediastackServer(t, `{"data":[{"title":"A","description":"d1"},{"title":"B","description":"d2"}]}`), list)
	defer l.Close()

	state, _ := l.State()
	assert.Equal(t, model.StateIdle, state)

	res := <-l.Start()

	assert.Equal(t, nil, res.Err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 2, res.Appended)
	assert.Equal(t, []model.Article{
		{Title: "A", Summary: "d1"},
		{Title: "B", Summary: "d2"},
	}, list.Snapshot())
	assert.Equal(t, 2, list.Count())
	assert.Equal(t, int32(1), notified.Load())

	state, err := l.State()
	assert.Equal(t, model.StatePopulated, state)
	assert.Equal(t, nil, err)
}

func TestStartEmptyDataKeepsCountAndNotifiesOnce(t *testing.T) {
	list := binding.New()
	list.ReplaceAll([]model.Article{{Title: "existing"}})
	notified := countNotifications(list)

	l := New(mediastackServer(t, `{"data":[]}`), list)
	defer l.Close()

	res := <-l.Start()

	assert.Equal(t, nil, res.Err)
	assert.Equal(t, 1, list.Count())
	assert.Equal(t, 0, res.Appended)
	assert.Equal(t, int32(1), notified.Load())
}

func TestStartAppendsAfterExistingRecords(t *testing.T) {
	list := binding.New()
	list.ReplaceAll([]model.Article{{Title: "old"}})

	l := New(mediastackServer(t, `{"data":[{"title":"new","description":""}]}`), list)
	defer l.Close()

	res := <-l.Start()

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "old", list.RecordAt(0).Title)
	assert.Equal(t, "new", list.RecordAt(1).Title)
}

func TestStartReplaceMode(t *testing.T) {
	list := binding.New()
	list.ReplaceAll([]model.Article{{Title: "old"}, {Title: "older"}})

	l := New(mediastackServer(t, `{"data":[{"title":"new","description":""}]}`), list, WithCommitMode(CommitReplace))
	defer l.Close()

	res := <-l.Start()

	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []model.Article{{Title: "new"}}, list.Snapshot())
}

func TestStartMalformedLeavesListUntouched(t *testing.T) {
	bodies := map[string]string{
		"missing data":        `{}`,
		"malformed mid-array": `{"data":[{"title":"A","description":"d1"},{"title":"B"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			list := binding.New()
			list.ReplaceAll([]model.Article{{Title: "existing", Summary: "s"}})
			notified := countNotifications(list)

			l := New(mediastackServer(t, body), list)
			defer l.Close()

			res := <-l.Start()

			assert.Equal(t, true, errors.Is(res.Err, news.ErrMalformedResponse))
			assert.Equal(t, 1, res.Count)
			assert.Equal(t, []model.Article{{Title: "existing", Summary: "s"}}, list.Snapshot())
			assert.Equal(t, int32(0), notified.Load())

			state, err := l.State()
			assert.Equal(t, model.StateFailed, state)
			assert.Equal(t, true, errors.Is(err, news.ErrMalformedResponse))
		})
	}
}

func TestStartTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	list := binding.New()
	notified := countNotifications(list)
	l := New(news.NewMediastackClient(srv.URL), list)
	defer l.Close()

	res := <-l.Start()

	assert.Equal(t, true, errors.Is(res.Err, news.ErrTransport))
	assert.Equal(t, 0, list.Count())
	assert.Equal(t, int32(0), notified.Load())

	state, _ := l.State()
	assert.Equal(t, model.StateFailed, state)
}

func TestStartWhileInFlightJoinsOutstandingFetch(t *testing.T) {
	client := &fakeClient{
		articles: []model.Article{{Title: "A"}},
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	list := binding.New()
	notified := countNotifications(list)
	l := New(client, list)
	defer l.Close()

	first := l.Start()
	<-client.started

	state, _ := l.State()
	assert.Equal(t, model.StateLoading, state)

	second := l.Start()
	close(client.release)

	r1, r2 := <-first, <-second

	assert.Equal(t, int32(1), client.calls.Load())
	assert.Equal(t, int32(1), notified.Load())
	assert.Equal(t, 1, list.Count())
	assert.Equal(t, true, r1.Shared)
	assert.Equal(t, true, r2.Shared)
	assert.Equal(t, r1.Count, r2.Count)

	state, _ = l.State()
	assert.Equal(t, model.StatePopulated, state)
}

func TestSequentialStartsFetchAgain(t *testing.T) {
	client := &fakeClient{articles: []model.Article{{Title: "A"}}}
	list := binding.New()
	l := New(client, list)
	defer l.Close()

	<-l.Start()
	res := <-l.Start()

	assert.Equal(t, int32(2), client.calls.Load())
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, false, res.Shared)
}

func TestCloseCancelsInFlightFetch(t *testing.T) {
	client := &fakeClient{
		articles: []model.Article{{Title: "A"}},
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	list := binding.New()
	notified := countNotifications(list)
	l := New(client, list)

	done := l.Start()
	<-client.started
	l.Close()

	res := <-done
	assert.Equal(t, true, errors.Is(res.Err, ErrClosed))
	assert.Equal(t, 0, list.Count())
	assert.Equal(t, int32(0), notified.Load())
}

func TestLateCompletionAfterCloseIsDiscarded(t *testing.T) {
	client := &fakeClient{
		articles:  []model.Article{{Title: "A"}},
		started:   make(chan struct{}),
		release:   make(chan struct{}),
		ignoreCtx: true,
	}
	list := binding.New()
	notified := countNotifications(list)
	l := New(client, list)

	done := l.Start()
	<-client.started
	l.Close()

	res := <-done
	assert.Equal(t, true, errors.Is(res.Err, ErrClosed))
	assert.Equal(t, 0, list.Count())
	assert.Equal(t, int32(0), notified.Load())
}

func TestStartAfterClose(t *testing.T) {
	client := &fakeClient{}
	l := New(client, binding.New())
	l.Close()

	res, ok := <-l.Start()

	assert.Equal(t, true, ok)
	assert.Equal(t, true, errors.Is(res.Err, ErrClosed))
	assert.Equal(t, int32(0), client.calls.Load())

	_, ok = <-l.Start()
	assert.Equal(t, true, ok)
}

func TestOnCompleteRunsOncePerFetch(t *testing.T) {
	var results []Result
	client := &fakeClient{err: errors.New("boom")}
	l := New(client, binding.New(), WithOnComplete(func(r Result) {
		results = append(results, r)
	}))
	defer l.Close()

	<-l.Start()

	assert.Equal(t, 1, len(results))
	assert.Equal(t, "boom", results[0].Err.Error())
}

func TestParseCommitMode(t *testing.T) {
	mode, err := ParseCommitMode("")
	assert.Equal(t, nil, err)
	assert.Equal(t, CommitAppend, mode)

	mode, err = ParseCommitMode(" Replace ")
	assert.Equal(t, nil, err)
	assert.Equal(t, CommitReplace, mode)

	_, err = ParseCommitMode("merge")
	assert.NotEqual(t, nil, err)
}
