package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/aretw0/axon/internal/logging"
	"github.com/aretw0/axon/internal/presentation/tui"
	"github.com/aretw0/axon/pkg/config"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the application logger from the log section of cfg.
// Logs go to Stderr so Stdout stays free for command output.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(os.Stderr, lvl, cfg.Log.Format), nil
}

// Renderer picks the glamour style for w: colored on a terminal, plain
// otherwise. raw disables rendering altogether.
func Renderer(w io.Writer, raw bool) func(string) (string, error) {
	if raw {
		return func(md string) (string, error) { return md, nil }
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return tui.NewRenderer()
	}
	return tui.NewPlainRenderer()
}

func printMarkdown(w io.Writer, render func(string) (string, error), md string) error {
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
