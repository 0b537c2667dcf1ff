package services

import "sync"

// documentLocks serialises processing per document. Concurrent pipeline
// runs for the same document would race on the wholesale chunk replace,
// so the second caller waits for the first to finish. Different
// documents proceed in parallel.
type documentLocks struct {
	mu    sync.Mutex
	locks map[string]*documentLock
}

type documentLock struct {
	mu   sync.Mutex
	refs int
}

func newDocumentLocks() *documentLocks {
	return &documentLocks{locks: make(map[string]*documentLock)}
}

// acquire blocks until the document's lock is held and returns the
// release function. Entries are reference-counted and removed once the
// last holder releases, so the map does not grow with document count.
func (d *documentLocks) acquire(documentID string) func() {
	d.mu.Lock()
	entry, ok := d.locks[documentID]
	if !ok {
		entry = &documentLock{}
		d.locks[documentID] = entry
	}
	entry.refs++
	d.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		d.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(d.locks, documentID)
		}
		d.mu.Unlock()
	}
}
