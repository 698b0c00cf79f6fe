package rx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/dispatch"
	"github.com/joeycumines/go-rxsched/scheduler"
	"github.com/joeycumines/go-rxsched/virtualtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a goroutine-safe observer
type recorder[E any] struct {
	mu     sync.Mutex
	events []Event[E]
	check  func()
}

func (x *recorder[E]) On(event Event[E]) {
	if x.check != nil {
		x.check()
	}
	x.mu.Lock()
	x.events = append(x.events, event)
	x.mu.Unlock()
}

func (x *recorder[E]) Events() []Event[E] {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Event[E](nil), x.events...)
}

func newQueue(t *testing.T) *dispatch.Queue {
	t.Helper()
	q, err := dispatch.NewQueue()
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func startQueue(t *testing.T, q *dispatch.Queue) {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(context.Background()) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := q.Shutdown(ctx); err != nil {
			t.Error(err)
		}
		if err := <-errCh; err != nil {
			t.Error(err)
		}
	})
}

func syncQueue(t *testing.T, q *dispatch.Queue) {
	t.Helper()
	done := make(chan struct{})
	require.NoError(t, q.Submit(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(`timed out waiting for queue`)
	}
}

func newDispatch(t *testing.T, q *dispatch.Queue) *scheduler.Dispatch {
	t.Helper()
	s, err := scheduler.NewDispatch(q)
	require.NoError(t, err)
	return s
}

func newVirtual(t *testing.T) *virtualtime.Scheduler {
	t.Helper()
	s, err := virtualtime.New(0)
	require.NoError(t, err)
	return s
}

// trackedSource emits values from a new goroutine, recording disposal
type trackedSource struct {
	values   []int
	disposed atomic.Bool
	done     chan struct{}
}

func (x *trackedSource) Subscribe(observer Observer[int]) disposable.Disposable {
	x.done = make(chan struct{})
	go func() {
		defer close(x.done)
		for _, v := range x.values {
			observer.On(Next(v))
		}
		observer.On(Completed[int]())
	}()
	return disposable.Func(func() { x.disposed.Store(true) })
}

func TestObserveOn_serial_preservesOrder(t *testing.T) {
	q := newQueue(t)
	startQueue(t, q)
	s := newDispatch(t, q)

	const n = 1000
	source := &trackedSource{}
	want := make([]Event[int], 0, n+1)
	for i := 0; i < n; i++ {
		source.values = append(source.values, i)
		want = append(want, Next(i))
	}
	want = append(want, Completed[int]())

	var offQueue atomic.Int32
	observer := &recorder[int]{check: func() {
		if !q.IsCurrent() {
			offQueue.Add(1)
		}
	}}
	ObserveOn[int](source, s).Subscribe(observer)

	<-source.done
	syncQueue(t, q)

	if diff := eventsDiff(want, observer.Events()); diff != `` {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
	assert.Zero(t, offQueue.Load())
	// disposed after delivering completion
	assert.True(t, source.disposed.Load())
}

func TestObserveOn_nonSerial_preservesOrder(t *testing.T) {
	vs := newVirtual(t)
	observer := &recorder[string]{}

	ObserveOn[string](FromSlice([]string{`a`, `b`, `c`}), vs).Subscribe(observer)

	assert.Empty(t, observer.Events())
	// one drain action, for all buffered events
	assert.Equal(t, 1, vs.Pending())

	vs.Start()

	if diff := eventsDiff([]Event[string]{Next(`a`), Next(`b`), Next(`c`), Completed[string]()}, observer.Events()); diff != `` {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestObserveOn_nonSerial_interleaved(t *testing.T) {
	vs := newVirtual(t)
	subject := NewSubject[int]()
	observer := &recorder[int]{}
	ObserveOn[int](subject, vs).Subscribe(observer)

	for i := 1; i <= 3; i++ {
		_, err := vs.ScheduleAbsolute(int64(i*10), func() (disposable.Disposable, error) {
			subject.On(Next(i))
			return nil, nil
		})
		require.NoError(t, err)
	}
	_, err := vs.ScheduleAbsolute(40, func() (disposable.Disposable, error) {
		subject.On(Completed[int]())
		return nil, nil
	})
	require.NoError(t, err)

	vs.Start()

	if diff := eventsDiff([]Event[int]{Next(1), Next(2), Next(3), Completed[int]()}, observer.Events()); diff != `` {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
	assert.False(t, subject.HasObservers())
}

func TestObserveOn_disposeBeforeDelivery(t *testing.T) {
	for _, tc := range [...]struct {
		name string
		run  func(t *testing.T, source Observable[int], observer Observer[int]) (d disposable.Disposable, deliver func())
	}{
		{`serial`, func(t *testing.T, source Observable[int], observer Observer[int]) (disposable.Disposable, func()) {
			q := newQueue(t)
			d := ObserveOn[int](source, newDispatch(t, q)).Subscribe(observer)
			return d, func() {
				startQueue(t, q)
				syncQueue(t, q)
			}
		}},
		{`non-serial`, func(t *testing.T, source Observable[int], observer Observer[int]) (disposable.Disposable, func()) {
			vs := newVirtual(t)
			d := ObserveOn[int](source, vs).Subscribe(observer)
			return d, vs.Start
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var upstreamDisposed atomic.Bool
			source := Create(func(observer Observer[int]) disposable.Disposable {
				observer.On(Next(1))
				observer.On(Next(2))
				return disposable.Func(func() { upstreamDisposed.Store(true) })
			})
			observer := &recorder[int]{}

			d, deliver := tc.run(t, source, observer)
			assert.False(t, upstreamDisposed.Load())

			d.Dispose()
			assert.True(t, upstreamDisposed.Load())

			deliver()
			assert.Empty(t, observer.Events())
		})
	}
}

func TestObserveOn_disposeMidStream(t *testing.T) {
	q := newQueue(t)
	startQueue(t, q)
	subject := NewSubject[int]()
	observer := &recorder[int]{}

	d := ObserveOn[int](subject, newDispatch(t, q)).Subscribe(observer)
	subject.On(Next(1))
	syncQueue(t, q)

	d.Dispose()
	assert.False(t, subject.HasObservers())
	subject.On(Next(2))
	syncQueue(t, q)

	assert.Empty(t, eventsDiff([]Event[int]{Next(1)}, observer.Events()))
}

func TestObserveOn_disposeWhileQueued(t *testing.T) {
	// events already queued, at the point of disposal, must not be delivered
	q := newQueue(t)
	startQueue(t, q)
	s := newDispatch(t, q)
	subject := NewSubject[int]()

	var (
		d        disposable.Disposable
		observer = &recorder[int]{}
	)
	d = ObserveOn[int](subject, s).Subscribe(ObserverFunc[int](func(event Event[int]) {
		observer.On(event)
		if v, _ := event.Value(); v == 1 {
			d.Dispose()
		}
	}))

	release := make(chan struct{})
	require.NoError(t, q.Submit(func() { <-release }))
	subject.On(Next(1))
	subject.On(Next(2))
	subject.On(Next(3))
	close(release)
	syncQueue(t, q)

	assert.Empty(t, eventsDiff([]Event[int]{Next(1)}, observer.Events()))
}

func TestObserveOn_main_fastPath(t *testing.T) {
	q := newQueue(t)
	startQueue(t, q)
	s, err := scheduler.NewMain(q)
	require.NoError(t, err)

	observer := &recorder[int]{}
	require.NoError(t, q.Submit(func() {
		ObserveOn[int](FromSlice([]int{1, 2}), s).Subscribe(observer)
		// delivered synchronously, since already on the queue
		if len(observer.Events()) != 3 {
			t.Error(`expected synchronous delivery`)
		}
	}))
	syncQueue(t, q)

	assert.Empty(t, eventsDiff([]Event[int]{Next(1), Next(2), Completed[int]()}, observer.Events()))
}

func TestObserveOn_main_pendingNotOvertaken(t *testing.T) {
	q := newQueue(t)
	startQueue(t, q)
	s, err := scheduler.NewMain(q)
	require.NoError(t, err)

	subject := NewSubject[int]()
	observer := &recorder[int]{}
	ObserveOn[int](subject, s).Subscribe(observer)

	require.NoError(t, q.Submit(func() {
		// off the queue, so delivery is enqueued behind this task
		emitted := make(chan struct{})
		go func() {
			defer close(emitted)
			subject.On(Next(1))
		}()
		<-emitted
		// on the queue, but must not run ahead of 1
		subject.On(Next(2))
		if len(observer.Events()) != 0 {
			t.Error(`expected delivery to be deferred`)
		}
	}))
	syncQueue(t, q)

	// with nothing pending, the fast path applies again
	require.NoError(t, q.Submit(func() {
		subject.On(Next(3))
		if len(observer.Events()) != 3 {
			t.Error(`expected synchronous delivery`)
		}
	}))
	syncQueue(t, q)

	assert.Empty(t, eventsDiff([]Event[int]{Next(1), Next(2), Next(3)}, observer.Events()))
}

func TestObserveOn_scheduleFailure(t *testing.T) {
	q := newQueue(t)
	require.NoError(t, q.Close())

	var upstreamDisposed atomic.Bool
	source := Create(func(observer Observer[int]) disposable.Disposable {
		observer.On(Next(1))
		return disposable.Func(func() { upstreamDisposed.Store(true) })
	})
	observer := &recorder[int]{}
	ObserveOn[int](source, newDispatch(t, q)).Subscribe(observer)

	assert.True(t, upstreamDisposed.Load())
	assert.Empty(t, observer.Events())
}

func TestObserveSingleOn(t *testing.T) {
	cause := errors.New(`fail`)
	for _, tc := range [...]struct {
		name   string
		source Observable[int]
		want   []Event[int]
	}{
		{`value`, Just(7), []Event[int]{Next(7), Completed[int]()}},
		{`empty`, Empty[int](), []Event[int]{Completed[int]()}},
		{`error`, Throw[int](cause), []Event[int]{Error[int](cause)}},
		{`value then error`, Create(func(observer Observer[int]) disposable.Disposable {
			observer.On(Next(1))
			observer.On(Error[int](cause))
			return nil
		}), []Event[int]{Error[int](cause)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			vs := newVirtual(t)
			observer := &recorder[int]{}
			ObserveSingleOn[int](tc.source, vs).Subscribe(observer)

			assert.Empty(t, observer.Events())
			assert.Equal(t, 1, vs.Pending())

			vs.Start()

			if diff := eventsDiff(tc.want, observer.Events()); diff != `` {
				t.Errorf("unexpected events (-want +got):\n%s", diff)
			}
		})
	}
}

func TestObserveSingleOn_schedulesOnStop(t *testing.T) {
	vs := newVirtual(t)
	subject := NewSubject[int]()
	observer := &recorder[int]{}
	ObserveSingleOn[int](subject, vs).Subscribe(observer)

	subject.On(Next(1))
	assert.Zero(t, vs.Pending())

	subject.On(Completed[int]())
	assert.Equal(t, 1, vs.Pending())

	vs.Start()
	assert.Empty(t, eventsDiff([]Event[int]{Next(1), Completed[int]()}, observer.Events()))
}

func TestObserveSingleOn_moreThanOneElement(t *testing.T) {
	vs := newVirtual(t)
	source := Create(func(observer Observer[int]) disposable.Disposable {
		observer.On(Next(1))
		observer.On(Next(2))
		return nil
	})
	r := recoverPanic(func() { ObserveSingleOn[int](source, vs).Subscribe(&recorder[int]{}) })
	assert.Equal(t, ErrMoreThanOneElement, r)
}

func TestObserveSingleOn_disposeBeforeDelivery(t *testing.T) {
	vs := newVirtual(t)
	observer := &recorder[int]{}
	d := ObserveSingleOn[int](Just(1), vs).Subscribe(observer)
	d.Dispose()
	// the scheduled action was disposed, too
	assert.Zero(t, vs.Pending())
	vs.Start()
	assert.Empty(t, observer.Events())
}

func TestObserveSingleOn_dispatch(t *testing.T) {
	q := newQueue(t)
	startQueue(t, q)
	pool := dispatch.NewPool(&dispatch.PoolConfig{Workers: 2})
	defer pool.Close()

	// background work, delivered back onto q
	source := Create(func(observer Observer[string]) disposable.Disposable {
		err := pool.Submit(func() {
			observer.On(Next(`result`))
			observer.On(Completed[string]())
		})
		if err != nil {
			observer.On(Error[string](err))
		}
		return nil
	})

	done := make(chan struct{})
	observer := &recorder[string]{check: func() {
		if !q.IsCurrent() {
			t.Error(`delivered off the queue`)
		}
	}}
	ObserveSingleOn[string](source, newDispatch(t, q)).Subscribe(ObserverFunc[string](func(event Event[string]) {
		observer.On(event)
		if event.IsStop() {
			close(done)
		}
	}))
	<-done

	assert.Empty(t, eventsDiff([]Event[string]{Next(`result`), Completed[string]()}, observer.Events()))
}
