package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
)

type line struct {
	text string
	err  error
}

// LinePrompter asks questions on out and reads answers line by line from in.
// Reading happens on a background goroutine so Ask can return as soon as
// its context is done. Close stops the goroutine once its current read
// returns.
type LinePrompter struct {
	in        io.Reader
	out       io.Writer
	once      sync.Once
	closeOnce sync.Once
	lines     chan line
	done      chan struct{}
	stopped   chan struct{}
}

var _ reconcile.Prompter = (*LinePrompter)(nil)

// NewLinePrompter creates a prompter over in and out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:      in,
		out:     out,
		lines:   make(chan line, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (p *LinePrompter) start() {
	go func() {
		defer close(p.stopped)
		reader := bufio.NewReader(p.in)
		for {
			text, err := reader.ReadString('\n')
			if err != nil && !(err == io.EOF && text != "") {
				if p.send(line{err: err}) {
					close(p.lines)
				}
				return
			}
			if !p.send(line{text: strings.TrimRight(text, "\r\n")}) {
				return
			}
		}
	}()
}

// send hands l to Ask, giving up when the prompter is closed
func (p *LinePrompter) send(l line) bool {
	select {
	case p.lines <- l:
		return true
	case <-p.done:
		return false
	}
}

// Close releases the reader goroutine. Ask must not be called afterwards.
func (p *LinePrompter) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

// Ask prints prompt and waits for one line. It returns io.EOF once input is
// exhausted, or the context error if ctx ends first.
func (p *LinePrompter) Ask(ctx context.Context, prompt string) (string, error) {
	p.once.Do(p.start)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}
