package wal

import (
	"io"
	"os"
	"sync"

	"github.com/flashcore/elegancekv/segmentmanager"
)

// ErrWALClosed is returned by Write once the Writer has started closing.
var ErrWALClosed = os.ErrClosed

// Writer serializes WAL appends onto a segmentmanager.SegmentManager
// through a single background goroutine, so concurrent callers never race
// on the active segment file.
type Writer struct {
	mu     sync.Mutex
	ch     chan *walRequest
	done   chan struct{}
	closed bool
	sm     segmentmanager.SegmentManager
	wg     sync.WaitGroup
}

type walRequest struct {
	log  *Log
	done chan error
}

// NewWriter starts a Writer backed by sm, buffering up to buffer pending
// appends before Write blocks.
func NewWriter(buffer int, sm segmentmanager.SegmentManager) *Writer {
	w := &Writer{
		ch:   make(chan *walRequest, buffer),
		done: make(chan struct{}),
		sm:   sm,
	}
	go w.loop()
	return w
}

// Write appends l to the WAL and blocks until it has been durably written
// (or the Writer is closed).
func (w *Writer) Write(l *Log) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWALClosed
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	req := &walRequest{log: l, done: make(chan error, 1)}
	select {
	case w.ch <- req:
		return <-req.done
	case <-w.done:
		return ErrWALClosed
	}
}

// Close waits for in-flight writes to finish and closes the underlying
// segment manager.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.wg.Wait()
	close(w.ch)
	<-w.done
	return w.sm.Close()
}

func (w *Writer) loop() {
	defer close(w.done)

	for req := range w.ch {
		sentErr := false
		err := w.sm.WriteActive(req.log.Size(), func(out io.Writer) {
			if encodeErr := req.log.Encode(out); encodeErr != nil {
				req.done <- encodeErr
				sentErr = true
			}
		})
		if !sentErr {
			req.done <- err
		}
	}
}
