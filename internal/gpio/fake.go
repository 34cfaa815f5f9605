package gpio

// FakeWatcher is a test double that replays scripted edges.
type FakeWatcher struct {
	edges chan Edge

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeWatcher creates a FakeWatcher whose channel replays the given
// edges and then closes, so consumer loops terminate on their own.
func NewFakeWatcher(edges []Edge) *FakeWatcher {
	ch := make(chan Edge, len(edges))
	for _, e := range edges {
		ch <- e
	}
	close(ch)
	return &FakeWatcher{edges: ch}
}

// Edges returns the scripted edge channel.
func (f *FakeWatcher) Edges() <-chan Edge {
	return f.edges
}

// Close marks the watcher as closed.
func (f *FakeWatcher) Close() error {
	f.Closed = true
	return nil
}
