// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "sync"

// =============================================================================
// ACTIVITY SIGNALS
// =============================================================================

// Signal is a kind of raw interaction reported by an input surface.
type Signal string

const (
	SignalPointerMove Signal = "pointer-move"
	SignalKeyDown     Signal = "key-down"
	SignalPointerDown Signal = "pointer-down"
	SignalTouchStart  Signal = "touch-start"
	SignalScroll      Signal = "scroll"
)

// DefaultSignals is the set of interactions that count as user activity.
var DefaultSignals = []Signal{
	SignalPointerMove,
	SignalKeyDown,
	SignalPointerDown,
	SignalTouchStart,
	SignalScroll,
}

// Surface is a source of raw interaction signals. Subscribe registers fn for
// one signal kind and returns the function that removes that registration.
type Surface interface {
	Subscribe(kind Signal, fn func()) (unsubscribe func())
}

// =============================================================================
// ACTIVITY BRIDGE
// =============================================================================

// ActivityBridge forwards every subscribed signal as a single activity
// notification. It does no filtering or rate limiting.
type ActivityBridge struct {
	mu       sync.Mutex
	unsubs   []func()
	attached bool
}

// AttachActivity registers one listener per kind on surface, each calling
// notify. An empty kinds list means DefaultSignals.
func AttachActivity(surface Surface, kinds []Signal, notify func()) *ActivityBridge {
	if len(kinds) == 0 {
		kinds = DefaultSignals
	}
	b := &ActivityBridge{attached: true}

	for _, kind := range kinds {
		unsub := surface.Subscribe(kind, func() {
			b.mu.Lock()
			live := b.attached
			b.mu.Unlock()
			if live && notify != nil {
				notify()
			}
		})
		if unsub != nil {
			b.unsubs = append(b.unsubs, unsub)
		}
	}
	return b
}

// Detach removes every listener the bridge registered. Safe to call more
// than once.
func (b *ActivityBridge) Detach() {
	b.mu.Lock()
	if !b.attached {
		b.mu.Unlock()
		return
	}
	b.attached = false
	unsubs := b.unsubs
	b.unsubs = nil
	b.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Attached reports whether the bridge still forwards signals.
func (b *ActivityBridge) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attached
}

// =============================================================================
// SIGNAL HUB
// =============================================================================

// Hub is an in-process Surface. Hosts that receive input as values (a
// terminal event loop, a test) call Emit, and every listener of that kind
// runs synchronously in registration order.
type Hub struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[Signal]map[uint64]func()
	order     map[Signal][]uint64
}

// NewHub creates an empty signal hub.
func NewHub() *Hub {
	return &Hub{
		listeners: make(map[Signal]map[uint64]func()),
		order:     make(map[Signal][]uint64),
	}
}

// Subscribe implements Surface.
func (h *Hub) Subscribe(kind Signal, fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.listeners[kind] == nil {
		h.listeners[kind] = make(map[uint64]func())
	}
	h.listeners[kind][id] = fn
	h.order[kind] = append(h.order[kind], id)

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(kind, id) })
	}
}

// Emit delivers one signal to every listener registered for kind.
func (h *Hub) Emit(kind Signal) {
	h.mu.Lock()
	ids := h.order[kind]
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		if fn, ok := h.listeners[kind][id]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ListenerCount returns the number of registered listeners across all kinds.
func (h *Hub) ListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.listeners {
		n += len(m)
	}
	return n
}

func (h *Hub) remove(kind Signal, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.listeners[kind], id)
	if len(h.listeners[kind]) == 0 {
		delete(h.listeners, kind)
	}
	ids := h.order[kind]
	for i, v := range ids {
		if v == id {
			h.order[kind] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(h.order[kind]) == 0 {
		delete(h.order, kind)
	}
}
