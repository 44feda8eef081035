package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"chatgpt-session/internal/domain"
)

type conversation interface {
	Send(ctx context.Context, text string) (string, error)
	History() []domain.Message
	LastByRole(role domain.Role) (string, bool)
}

type repl struct {
	session conversation
	timeout time.Duration
}

// run reads one user turn per line until EOF or /quit.
func (r *repl) run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/history":
			for _, m := range r.session.History() {
				fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
			}
		case "/last":
			if last, ok := r.session.LastByRole(domain.RoleAssistant); ok {
				fmt.Fprintln(out, last)
			} else {
				fmt.Fprintln(out, "(no replies yet)")
			}
		default:
			reply, err := r.send(ctx, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				break
			}
			fmt.Fprintln(out, reply)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func (r *repl) send(ctx context.Context, text string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.session.Send(ctx, text)
}
