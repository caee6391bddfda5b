package notify

import (
	"fmt"
	"io"
	"os"
	"time"
)

const (
	DefaultBlinkCycles   = 6
	DefaultBlinkInterval = time.Second
)

// Console prints each message and then blinks a marker on the same line.
// Deliver blocks for 2*cycles*interval.
type Console struct {
	out      io.Writer
	cycles   int
	interval time.Duration
	sleep    func(time.Duration)
}

type ConsoleOption func(*Console)

func WithOutput(w io.Writer) ConsoleOption {
	return func(c *Console) { c.out = w }
}

// WithBlink sets the number of blink cycles and the pause between frames.
// Zero cycles disables the animation.
func WithBlink(cycles int, interval time.Duration) ConsoleOption {
	return func(c *Console) {
		if cycles < 0 {
			cycles = 0
		}
		c.cycles = cycles
		c.interval = interval
	}
}

func WithSleep(fn func(time.Duration)) ConsoleOption {
	return func(c *Console) { c.sleep = fn }
}

func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		out:      os.Stdout,
		cycles:   DefaultBlinkCycles,
		interval: DefaultBlinkInterval,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) Deliver(message string) {
	fmt.Fprintln(c.out, message)
	for i := 0; i < c.cycles; i++ {
		fmt.Fprint(c.out, "\r* ")
		c.sleep(c.interval)
		fmt.Fprint(c.out, "\r *")
		c.sleep(c.interval)
	}
}
