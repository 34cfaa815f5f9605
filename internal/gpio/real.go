//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/msf-receiver/internal/msf"
)

// RealWatcher delivers edges from actual hardware using the Linux GPIO
// character device's edge event reporting.
type RealWatcher struct {
	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	edges chan Edge
}

// NewRealWatcher requests pin on chipName with both-edge event reporting.
// Receiver modules with an inverted output (idle low, high during the
// carrier-off part) can set invert to flip the reported directions.
func NewRealWatcher(chipName string, pin int, invert bool) (*RealWatcher, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Buffered generously: the line carries at most a handful of edges
	// per second, but the consumer also serves MQTT and HTTP.
	w := &RealWatcher{chip: chip, edges: make(chan Edge, 64)}

	line, err := chip.RequestLine(pin,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(w.handleEvent(invert)),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", pin, err)
	}
	w.line = line
	return w, nil
}

func (w *RealWatcher) handleEvent(invert bool) func(gpiocdev.LineEvent) {
	return func(ev gpiocdev.LineEvent) {
		dir := msf.Rising
		if ev.Type == gpiocdev.LineEventFallingEdge {
			dir = msf.Falling
		}
		if invert {
			if dir == msf.Rising {
				dir = msf.Falling
			} else {
				dir = msf.Rising
			}
		}
		e := Edge{Dir: dir, Micros: uint32(ev.Timestamp.Microseconds())}
		select {
		case w.edges <- e:
		default:
			// Consumer stalled. Dropping an edge decodes as an unknown
			// bit; blocking the kernel event goroutine would be worse.
		}
	}
}

// Edges returns the channel edge events arrive on.
func (w *RealWatcher) Edges() <-chan Edge {
	return w.edges
}

// Close releases GPIO resources and closes the edge channel.
func (w *RealWatcher) Close() error {
	var errs []error

	if w.line != nil {
		if err := w.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	// Safe once the line is closed: no more event callbacks can run.
	close(w.edges)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
