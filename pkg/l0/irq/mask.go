package irq

import "sync"

// Mask models the global interrupt enable flag.
// The zero value is ready to use with interrupts enabled.
type Mask struct {
	lock sync.Mutex
}

// Disable enters a critical section.
func (m *Mask) Disable() {
	m.lock.Lock()
}

// Enable leaves the critical section.
func (m *Mask) Enable() {
	m.lock.Unlock()
}

// Do runs fn inside a critical section.
// fn must be short and must not block or call Do again.
func (m *Mask) Do(fn func()) {
	m.lock.Lock()
	defer m.lock.Unlock()
	fn()
}
