package horde

import "sync"

// Log is the append-only domain event record. Appends assign sequence
// numbers; subscribers receive each event on their channel with a
// non-blocking send, so a slow consumer drops events rather than
// stalling the engine. Durable consumers should use Range to backfill.
//
// Log is safe for concurrent use.
type Log struct {
	mu          sync.RWMutex
	events      []Event
	nextSeq     uint64
	subscribers map[chan<- Event]struct{}
}

// NewLog creates an empty Log.
//
// Postcondition: Len() == 0; the first appended event gets Seq == 1.
func NewLog() *Log {
	return &Log{
		nextSeq:     1,
		subscribers: make(map[chan<- Event]struct{}),
	}
}

// Append assigns the next sequence number to e, stores it, and fans it
// out to subscribers.
//
// Postcondition: The returned event has Seq one greater than the
// previously appended event; the log never reorders or drops entries.
func (l *Log) Append(e Event) Event {
	l.mu.Lock()
	e.Seq = l.nextSeq
	l.nextSeq++
	l.events = append(l.events, e)
	subs := make([]chan<- Event, 0, len(l.subscribers))
	for ch := range l.subscribers {
		subs = append(subs, ch)
	}
	l.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
	return e
}

// Advance moves the sequence position past seq, so appends resume
// after a journal persisted by an earlier process. Calling with a seq
// behind the current position is a no-op.
//
// Precondition: Call before any Append; already-appended events keep
// their assigned sequence numbers.
// Postcondition: The next appended event gets Seq >= seq+1.
func (l *Log) Advance(seq uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq+1 > l.nextSeq {
		l.nextSeq = seq + 1
	}
}

// Range returns all events with from <= Seq <= to, in sequence order.
//
// Postcondition: Returns an empty slice when the range matches nothing;
// never returns an error.
func (l *Log) Range(from, to uint64) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.events {
		if e.Seq > to {
			break
		}
		if e.Seq >= from {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of appended events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Subscribe registers ch to receive each appended event. If ch is full
// at append time the event is dropped for that subscriber.
//
// Precondition: ch must not be nil.
func (l *Log) Subscribe(ch chan<- Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber set.
func (l *Log) Unsubscribe(ch chan<- Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.subscribers, ch)
}
