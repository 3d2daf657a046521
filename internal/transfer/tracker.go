package transfer

import "sync"

// Tracker lets a client poll the progress of an upload it tagged with an id
// while the upload request is still running.
type Tracker struct {
	mu      sync.RWMutex
	uploads map[string]*Progress
}

func NewTracker() *Tracker {
	return &Tracker{uploads: make(map[string]*Progress)}
}

// Start registers a fresh counter under id, replacing any previous one.
func (t *Tracker) Start(id string) *Progress {
	p := NewProgress()
	if id == "" {
		return p
	}
	t.mu.Lock()
	t.uploads[id] = p
	t.mu.Unlock()
	return p
}

func (t *Tracker) Get(id string) (*Progress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.uploads[id]
	return p, ok
}

func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	delete(t.uploads, id)
	t.mu.Unlock()
}
