package gpio

import (
	"testing"

	"github.com/sweeney/msf-receiver/internal/msf"
)

func TestFakeWatcherReplaysEdgesInOrder(t *testing.T) {
	scripted := []Edge{
		{Dir: msf.Falling, Micros: 1_000_000},
		{Dir: msf.Rising, Micros: 1_100_000},
		{Dir: msf.Falling, Micros: 2_000_000},
	}
	w := NewFakeWatcher(scripted)

	var got []Edge
	for e := range w.Edges() {
		got = append(got, e)
	}
	if len(got) != len(scripted) {
		t.Fatalf("got %d edges, want %d", len(got), len(scripted))
	}
	for i, e := range got {
		if e != scripted[i] {
			t.Errorf("edge %d: got %+v, want %+v", i, e, scripted[i])
		}
	}
}

func TestFakeWatcherChannelClosesWhenDrained(t *testing.T) {
	w := NewFakeWatcher(nil)
	if _, open := <-w.Edges(); open {
		t.Error("channel must be closed with no scripted edges")
	}
}

func TestFakeWatcherClose(t *testing.T) {
	w := NewFakeWatcher(nil)
	if w.Closed {
		t.Error("watcher must not start closed")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !w.Closed {
		t.Error("Close must mark the watcher closed")
	}
}
