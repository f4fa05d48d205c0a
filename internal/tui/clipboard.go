package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard writes through the system clipboard tools and falls back to an
// OSC 52 escape sequence, which also works over SSH.
type Clipboard struct {
	osc      io.Writer
	tmux     bool
	native   bool
	writeAll func(string) error
}

// NewClipboard sends OSC 52 sequences to osc, usually the terminal's stderr.
func NewClipboard(osc io.Writer) *Clipboard {
	return &Clipboard{
		osc:      osc,
		tmux:     os.Getenv("TMUX") != "",
		native:   !clipboard.Unsupported,
		writeAll: clipboard.WriteAll,
	}
}

func (c *Clipboard) SetText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var nativeErr error
	if c.native {
		if nativeErr = c.writeAll(text); nativeErr == nil {
			return nil
		}
	}

	if c.osc == nil {
		if nativeErr != nil {
			return nativeErr
		}
		return errors.New("no clipboard available")
	}

	seq := osc52.New(text)
	if c.tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(c.osc); err != nil {
		return errors.Join(nativeErr, fmt.Errorf("osc52: %w", err))
	}
	return nil
}
