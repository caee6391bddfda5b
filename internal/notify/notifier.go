// Package notify delivers violation messages produced by the monitor.
package notify

// Notifier receives one message per violated rule.
type Notifier interface {
	Deliver(message string)
}

// Func adapts a plain callback to Notifier.
type Func func(message string)

func (f Func) Deliver(message string) {
	if f != nil {
		f(message)
	}
}
