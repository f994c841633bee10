// internal/handlers/terminal.go
package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/game"
)

// TerminalClient is a game.Client over line-oriented text streams. Input lines
// are actions, either JSON objects or a shorthand such as "roll" or "buy 12".
// Responses are written one JSON document per line.
type TerminalClient struct {
	lines <-chan string
	errc  <-chan error

	mu  sync.Mutex
	out io.Writer
}

func NewTerminalClient(in io.Reader, out io.Writer) *TerminalClient {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		errc <- err
		close(lines)
	}()
	return &TerminalClient{lines: lines, errc: errc, out: out}
}

func (t *TerminalClient) Write(_ context.Context, msgs ...game.Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	data := append(game.EncodeResponses(msgs...), '\n')
	_, err := t.out.Write(data)
	return err
}

// line waits for the next non-empty input line.
func (t *TerminalClient) line(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case l, ok := <-t.lines:
			if !ok {
				return "", <-t.errc
			}
			if l = strings.TrimSpace(l); l != "" {
				return l, nil
			}
		}
	}
}

func (t *TerminalClient) Read(ctx context.Context, prompt string) (string, error) {
	if err := t.Write(ctx, game.Response{Response: game.RespPrompt, Value: prompt}); err != nil {
		return "", err
	}
	return t.line(ctx)
}

func (t *TerminalClient) Next(ctx context.Context) (game.Action, error) {
	l, err := t.line(ctx)
	if err != nil {
		return game.Action{}, err
	}
	return ParseTerminalAction(l)
}

// ParseTerminalAction accepts a JSON action or the shorthand forms
// "roll", "end-turn" and "buy <spaceid>". Any other bare word is sent as an
// action with no fields.
func ParseTerminalAction(line string) (game.Action, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "{") {
		return game.ParseAction([]byte(line))
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return game.Action{}, fmt.Errorf("empty line: %w", apperror.ErrMalformedAction)
	}

	switch name := words[0]; name {
	case "buy":
		if len(words) != 2 {
			return game.Action{}, fmt.Errorf("usage: buy <spaceid>: %w", apperror.ErrMalformedAction)
		}
		id, err := strconv.Atoi(words[1])
		if err != nil {
			return game.Action{}, fmt.Errorf("space id %q: %w", words[1], apperror.ErrMalformedAction)
		}
		return game.NewAction(name, map[string]interface{}{"spaceid": id}), nil
	default:
		if len(words) != 1 {
			return game.Action{}, fmt.Errorf("%s takes no arguments, send JSON instead: %w", name, apperror.ErrMalformedAction)
		}
		return game.NewAction(name, nil), nil
	}
}
