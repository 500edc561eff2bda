// Package render draws the bound article list as plain text rows.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"uptotimenews/internal/model"
)

type rowSource interface {
	Count() int
	RecordAt(index int) model.Article
}

// Terminal redraws every row on each data-changed signal.
type Terminal struct {
	mu   sync.Mutex
	out  io.Writer
	list rowSource
}

func NewTerminal(out io.Writer, list rowSource) *Terminal {
	return &Terminal{out: out, list: list}
}

func (t *Terminal) DataChanged() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.draw(); err != nil {
		slog.Error("error rendering articles", "error", err)
	}
}

func (t *Terminal) draw() error {
	n := t.list.Count()
	if n == 0 {
		_, err := fmt.Fprintln(t.out, "No articles.")
		return err
	}

	for i := 0; i < n; i++ {
		a := t.list.RecordAt(i)
		if _, err := fmt.Fprintf(t.out, "%d. %s\n", i+1, a.Title); err != nil {
			return err
		}
		if a.Summary != "" {
			if _, err := fmt.Fprintf(t.out, "   %s\n", a.Summary); err != nil {
				return err
			}
		}
	}
	return nil
}
