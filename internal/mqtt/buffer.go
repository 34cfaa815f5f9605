package mqtt

import "log"

// pendingEvent is one undelivered publication. Exactly one of the two event
// fields is set. Payloads are formatted at drain time, so a replayed minute
// carries the same JSON shape it would have carried live.
type pendingEvent struct {
	time   *TimeEvent
	system *SystemEvent
}

// message resolves the pending event into its wire form.
func (e pendingEvent) message() (topic string, qos byte, retained bool, payload []byte, err error) {
	if e.time != nil {
		payload, err = FormatTimePayload(*e.time)
		// QoS 0: a replayed minute is still superseded by the next live one.
		return Topic, 0, false, payload, err
	}
	payload, err = FormatSystemPayload(*e.system)
	return TopicSystem, 1, e.system.Retained, payload, err
}

// eventBuffer is a fixed-capacity FIFO holding decoded minutes and system
// events that arrived while the broker was unreachable. When full, the oldest
// event is overwritten: a fresh minute is worth more than a stale one.
// Not safe for concurrent use; the caller must synchronize.
type eventBuffer struct {
	buf      []pendingEvent
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any event was dropped since last drain
}

func newEventBuffer(capacity int) *eventBuffer {
	return &eventBuffer{
		buf:      make([]pendingEvent, capacity),
		capacity: capacity,
	}
}

// pushTime queues a decoded minute for replay on reconnection.
func (b *eventBuffer) pushTime(event TimeEvent) {
	b.push(pendingEvent{time: &event})
}

// pushSystem queues a system lifecycle event for replay on reconnection.
func (b *eventBuffer) pushSystem(event SystemEvent) {
	b.push(pendingEvent{system: &event})
}

func (b *eventBuffer) push(e pendingEvent) {
	if b.count == b.capacity {
		if !b.overflow {
			log.Printf("mqtt: buffer full (%d events), dropping oldest", b.capacity)
			b.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		b.buf[b.head] = e
		b.head = (b.head + 1) % b.capacity
		// count stays at capacity
		return
	}
	b.buf[b.head] = e
	b.head = (b.head + 1) % b.capacity
	b.count++
}

// drainAll returns the buffered events oldest first and empties the buffer.
func (b *eventBuffer) drainAll() []pendingEvent {
	if b.count == 0 {
		return nil
	}

	result := make([]pendingEvent, b.count)
	// Oldest item is at (head - count) mod capacity
	start := (b.head - b.count + b.capacity) % b.capacity
	for i := 0; i < b.count; i++ {
		result[i] = b.buf[(start+i)%b.capacity]
	}

	b.count = 0
	b.head = 0
	b.overflow = false
	return result
}

func (b *eventBuffer) len() int {
	return b.count
}
