package service

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second

	// WaitChannelBuffer size for notification channels
	WaitChannelBuffer = 1
)

var ErrWaitShutdown = errors.New("wait registry shutdown timed out")

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*waitRequest // gameID -> waiting clients
	timeout  time.Duration
	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// waitRequest is a single client waiting for a game to move past a version
type waitRequest struct {
	version int
	notify  chan struct{}
	timer   *time.Timer
}

func NewWaitRegistry() *WaitRegistry {
	return newWaitRegistry(WaitTimeout)
}

func newWaitRegistry(timeout time.Duration) *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		timeout:  timeout,
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that fires once the game version differs
// from version, when the wait times out, or when the game is removed. The
// channel is closed on shutdown.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, version int) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &waitRequest{
		version: version,
		notify:  make(chan struct{}, WaitChannelBuffer),
	}
	req.timer = time.AfterFunc(w.timeout, func() { signal(req) })
	w.waiters[gameID] = append(w.waiters[gameID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			w.removeWaiter(gameID, req)
		case <-w.shutdown:
			req.timer.Stop()
			close(req.notify)
		}
	}()

	return req.notify
}

// NotifyGame wakes every client whose known version is stale
func (w *WaitRegistry) NotifyGame(gameID string, version int) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	var keep []*waitRequest
	for _, req := range waitList {
		if req.version != version {
			req.timer.Stop()
			signal(req)
			continue
		}
		keep = append(keep, req)
	}
	if len(keep) == 0 {
		delete(w.waiters, gameID)
	} else {
		w.waiters[gameID] = keep
	}
	w.mu.Unlock()
}

// RemoveGame wakes and drops all waiters for a game (called before game deletion)
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.timer.Stop()
		signal(req)
	}
}

// Waiting returns the number of clients parked on a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[gameID])
}

// Shutdown releases every waiter and waits for their goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.once.Do(func() { close(w.shutdown) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrWaitShutdown
	}
}

// signal performs a non-blocking send; a full channel already holds a wakeup
func signal(req *waitRequest) {
	select {
	case req.notify <- struct{}{}:
	default:
	}
}

func (w *WaitRegistry) removeWaiter(gameID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req.timer.Stop()
	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}
	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
