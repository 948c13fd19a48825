package notify

import (
	"fmt"
	"io"
	"sync"
)

// Notifier delivers one reminder to the user. The tag deduplicates at the
// display layer per task and milestone; callers are still responsible for
// their own cooldown.
type Notifier interface {
	Show(title, body, tag string) error
}

// Console writes reminders to a terminal, one block per reminder. It is
// the delivery surface for the foreground daemon.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole builds a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Show(title, body, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "\n*** %s\n    %s\n", title, body)
	return err
}
