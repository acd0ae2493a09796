package framework

import "context"

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners, e.g. the
// goroutines standing in for interrupt sources.
type Runnable interface {
	Run(context.Context) error
}

// Controller is evaluated once per main loop iteration.
type Controller interface {
	Control(context.Context) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(context.Context) error

// Control implements Controller.
func (f ControlFunc) Control(ctx context.Context) error {
	return f(ctx)
}

// Waker wakes the main loop for an immediate iteration.
// Wake must be safe to call from interrupt context: it never blocks.
type Waker interface {
	Wake()
}

// WakeFunc is the func form of Waker.
type WakeFunc func()

// Wake implements Waker.
func (f WakeFunc) Wake() {
	f()
}
