package client

import (
	"context"
	stderrors "errors"
	"sync"
	"team-relay/protocol"
	"time"
)

var errWaitTimeout = stderrors.New("wait timed out")

type waiterKey struct {
	requestID string
	msgType   protocol.MessageType
}

type result struct {
	msg protocol.Message
	err error
}

// waiter is one pending call expecting a reply of a given type.
type waiter struct {
	key  waiterKey
	done chan result
}

// await blocks until the waiter is resolved or rejected, timeout elapses or
// ctx ends. A timeout returns errWaitTimeout.
func (w *waiter) await(ctx context.Context, timeout time.Duration) (protocol.Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-w.done:
		return r.msg, r.err
	case <-timer.C:
		return nil, errWaitTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// waiters indexes the pending calls by request id and expected type.
// A resolved or rejected waiter is removed at once, so a late reply finds
// nothing and is ignored.
type waiters struct {
	mu      sync.Mutex
	pending map[waiterKey]*waiter
}

func newWaiters() *waiters {
	return &waiters{pending: make(map[waiterKey]*waiter)}
}

func (ws *waiters) register(requestID string, msgType protocol.MessageType) *waiter {
	w := &waiter{
		key:  waiterKey{requestID: requestID, msgType: msgType},
		done: make(chan result, 1),
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.pending[w.key] = w
	return w
}

func (ws *waiters) remove(w *waiter) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.pending[w.key] == w {
		delete(ws.pending, w.key)
	}
}

// resolve hands msg to the waiter expecting it. An ERROR frame rejects
// every waiter of its request id. It reports whether a waiter matched.
func (ws *waiters) resolve(msg protocol.Message) bool {
	requestID := protocol.RequestID(msg)
	if requestID == "" {
		return false
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if errFrame, ok := msg.(*protocol.Error); ok {
		matched := false
		for key, w := range ws.pending {
			if key.requestID == requestID {
				w.done <- result{err: errFrame.AsError()}
				delete(ws.pending, key)
				matched = true
			}
		}
		return matched
	}

	key := waiterKey{requestID: requestID, msgType: msg.MessageType()}
	w, ok := ws.pending[key]
	if !ok {
		return false
	}
	w.done <- result{msg: msg}
	delete(ws.pending, key)
	return true
}

// rejectAll fails every pending waiter with err.
func (ws *waiters) rejectAll(err error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for key, w := range ws.pending {
		w.done <- result{err: err}
		delete(ws.pending, key)
	}
}

func (ws *waiters) count() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.pending)
}
