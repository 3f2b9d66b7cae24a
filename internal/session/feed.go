package session

import (
	"sync"

	"go.uber.org/zap"
)

const defaultFeedBuffer = 32

// Feed serializes provider events onto a Writer from one goroutine.
type Feed struct {
	writer *Writer
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	log    *zap.Logger

	startOnce sync.Once
	closeOnce sync.Once
}

func NewFeed(w *Writer, buffer int, log *zap.Logger) *Feed {
	if buffer <= 0 {
		buffer = defaultFeedBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{
		writer: w,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
		log:    log,
	}
}

// Start launches the apply loop. Calling it again is a no-op.
func (f *Feed) Start() {
	f.startOnce.Do(func() {
		f.wg.Add(1)
		go f.run()
	})
}

// Deliver queues ev. It blocks while the buffer is full and returns false
// once the feed is closed.
func (f *Feed) Deliver(ev Event) bool {
	select {
	case <-f.done:
		return false
	default:
	}

	select {
	case f.events <- ev:
		return true
	case <-f.done:
		return false
	}
}

// Close stops the loop and waits for it. Events still queued are dropped.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		close(f.done)
	})
	f.wg.Wait()
}

func (f *Feed) run() {
	defer f.wg.Done()
	for {
		select {
		case <-f.done:
			return
		case ev := <-f.events:
			select {
			case <-f.done:
				return
			default:
			}
			f.writer.Apply(ev)
			f.log.Debug("session event applied", zap.Stringer("kind", ev.Kind))
		}
	}
}
