package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	mu          sync.Mutex
	calls       int
	rejuvenated int
	closed      bool
	result      string
	err         error
	delay       time.Duration
}

func (f *fakeRecognizer) Recognize(ctx context.Context, data []byte) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeRecognizer) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeRecognizer) Rejuvenate() error {
	f.mu.Lock()
	f.rejuvenated++
	f.mu.Unlock()
	return nil
}

func (f *fakeRecognizer) snapshot() (calls, rejuvenated int, closed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.rejuvenated, f.closed
}

func TestSubmitProcessesTask(t *testing.T) {
	fake := &fakeRecognizer{result: "hello"}
	p, err := New(Config{Workers: 1, QueueSize: 4}, func() (Recognizer, error) {
		return fake, nil
	})
	require.NoError(t, err)

	done := make(chan string, 1)
	ctx := context.Background()
	require.NoError(t, p.Submit(ctx, Task{
		ImageID: "img-1",
		Payload: []byte("data"),
		Done: func(text string, err error) {
			require.NoError(t, err)
			done <- text
		},
	}))

	select {
	case text := <-done:
		require.Equal(t, "hello", text)
	case <-time.After(time.Second):
		t.Fatal("task was never completed")
	}

	require.NoError(t, p.Shutdown())
	_, _, closed := fake.snapshot()
	require.True(t, closed)
}

func TestSubmitBlocksWhenQueueFull(t *testing.T) {
	fake := &fakeRecognizer{result: "x", delay: 50 * time.Millisecond}
	p, err := New(Config{Workers: 1, QueueSize: 1}, func() (Recognizer, error) {
		return fake, nil
	})
	require.NoError(t, err)
	defer p.Shutdown()

	noop := func(string, error) {}
	ctx := context.Background()
	// First task occupies the worker; second fills the queue slot.
	require.NoError(t, p.Submit(ctx, Task{ImageID: "1", Done: noop}))
	require.NoError(t, p.Submit(ctx, Task{ImageID: "2", Done: noop}))

	// Queue and worker are now both occupied; a third submit must block
	// until ctx is cancelled.
	shortCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	err = p.Submit(shortCtx, Task{ImageID: "3", Done: noop})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRejuvenationEveryNTasks(t *testing.T) {
	fake := &fakeRecognizer{result: "ok"}
	p, err := New(Config{
		Workers:      1,
		QueueSize:    8,
		Rejuvenation: RejuvenationPolicy{EveryTasks: 2},
	}, func() (Recognizer, error) {
		return fake, nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(ctx, Task{
			ImageID: "img",
			Done: func(string, error) {
				wg.Done()
			},
		}))
	}
	wg.Wait()
	// Give the worker loop a moment to apply rejuvenation after the last
	// task's Done callback fires (rejuvenation happens right after).
	require.Eventually(t, func() bool {
		_, rejuvenated, _ := fake.snapshot()
		return rejuvenated == 2
	}, time.Second, 5*time.Millisecond)

	p.Shutdown()
}

func TestShutdownDrainsQueueAndClosesEngines(t *testing.T) {
	fakes := []*fakeRecognizer{{result: "a"}, {result: "b"}}
	idx := 0
	var mu sync.Mutex
	p, err := New(Config{Workers: 2, QueueSize: 8}, func() (Recognizer, error) {
		mu.Lock()
		defer mu.Unlock()
		f := fakes[idx]
		idx++
		return f, nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(ctx, Task{
			ImageID: "img",
			Done: func(string, error) {
				wg.Done()
			},
		}))
	}
	// Shut down while tasks may still be queued; Shutdown must run every
	// one of them before returning.
	require.NoError(t, p.Shutdown())
	wg.Wait()

	for _, f := range fakes {
		_, _, closed := f.snapshot()
		require.True(t, closed)
	}
}

func TestNewFailsWhenAllEnginesFail(t *testing.T) {
	_, err := New(Config{Workers: 2, QueueSize: 1}, func() (Recognizer, error) {
		return nil, context.DeadlineExceeded
	})
	require.Error(t, err)
}

func TestNewSucceedsWithPartialEngineFailures(t *testing.T) {
	calls := 0
	p, err := New(Config{Workers: 2, QueueSize: 1}, func() (Recognizer, error) {
		calls++
		if calls == 1 {
			return nil, context.DeadlineExceeded
		}
		return &fakeRecognizer{result: "ok"}, nil
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	p.Shutdown()
}
