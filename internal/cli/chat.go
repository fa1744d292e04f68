// Package cli implements the interactive terminal front end.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/tafel/internal/logging"
	"github.com/aretw0/tafel/pkg/domain"
)

// Replier answers a chat message; implemented by tafel.Assistant.
type Replier interface {
	Reply(ctx context.Context, clientID, message string) (string, error)
}

// ChatOptions configures RunChat.
type ChatOptions struct {
	ClientID string
	In       io.Reader
	Out      io.Writer
	// Render formats replies (e.g. glamour on a TTY); nil prints them verbatim.
	Render func(string) (string, error)
	// Prompt is printed before each line; empty disables it (useful for piped input).
	Prompt string
	Logger *slog.Logger
}

var exitWords = map[string]bool{"exit": true, "quit": true, "tschüss": true}

// RunChat reads one message per line and prints the reply until EOF, an exit word or ctx ends.
func RunChat(ctx context.Context, r Replier, opts ChatOptions) error {
	if opts.ClientID == "" {
		opts.ClientID = "local"
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if opts.Prompt != "" {
			fmt.Fprint(opts.Out, opts.Prompt)
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line = <-lines:
		}

		msg := strings.TrimSpace(line)
		if msg == "" {
			continue
		}
		if exitWords[strings.ToLower(msg)] {
			return nil
		}

		reply, err := r.Reply(ctx, opts.ClientID, msg)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				fmt.Fprintf(opts.Out, ">>> %v\n", err)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		printReply(opts, reply)
	}
}

func printReply(opts ChatOptions, reply string) {
	if opts.Render != nil {
		rendered, err := opts.Render(reply)
		if err == nil {
			fmt.Fprint(opts.Out, rendered)
			return
		}
		opts.Logger.Debug("render failed", "error", err)
	}
	fmt.Fprintln(opts.Out, reply)
}
