package events

import "sync"

// Handler receives one event.
type Handler func(ev Event)

type queue struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event

	handlers map[Kind][]subscription
	nextSub  uint64
}

type subscription struct {
	id uint64
	fn Handler
}

// Queue is a FIFO event queue drained once per frame on the main thread. Push may be
// called from any goroutine; Drain and Subscribe belong to the thread that owns the
// frame loop.
type Queue interface {
	// Push appends an event. Events pushed while a Drain is running are delivered by
	// the next Drain.
	//
	// Parameters:
	//   - ev: the event to queue
	Push(ev Event)

	// Drain delivers every event queued before the call, in push order. Subscribers
	// of the event's kind run first, in subscription order, then fn if it is not nil.
	//
	// Parameters:
	//   - fn: optional catch-all handler
	//
	// Returns:
	//   - int: the number of events delivered
	Drain(fn Handler) int

	// Subscribe registers fn for every event of kind.
	//
	// Parameters:
	//   - kind: the event kind to receive
	//   - fn: the handler
	//
	// Returns:
	//   - func(): removes the subscription; safe to call more than once
	Subscribe(kind Kind, fn Handler) func()

	// Len returns the number of queued events.
	Len() int
}

var _ Queue = &queue{}

// NewQueue creates an empty event queue.
//
// Returns:
//   - Queue: the queue
func NewQueue() Queue {
	return &queue{handlers: make(map[Kind][]subscription)}
}

func (q *queue) Push(ev Event) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *queue) Drain(fn Handler) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.mu.Unlock()

	for _, ev := range batch {
		for _, s := range q.handlers[ev.Kind] {
			s.fn(ev)
		}
		if fn != nil {
			fn(ev)
		}
	}

	clear(batch)
	q.mu.Lock()
	q.spare = batch[:0]
	q.mu.Unlock()
	return len(batch)
}

func (q *queue) Subscribe(kind Kind, fn Handler) func() {
	q.nextSub++
	id := q.nextSub
	q.handlers[kind] = append(q.handlers[kind], subscription{id: id, fn: fn})
	return func() {
		subs := q.handlers[kind]
		for i, s := range subs {
			if s.id == id {
				q.handlers[kind] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}
