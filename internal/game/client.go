// internal/game/client.go
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
)

// Client is the transport seen by a game: a socket or a terminal.
type Client interface {
	// Read writes a prompt and waits for one line of text.
	Read(ctx context.Context, prompt string) (string, error)
	// Write sends one message, or a list of messages as a single frame.
	Write(ctx context.Context, msgs ...Response) error
	// Next blocks until the client sends an action.
	Next(ctx context.Context) (Action, error)
}

// Action is an inbound {"action": name, ...fields} object.
type Action struct {
	Name   string
	Fields map[string]json.RawMessage
	Raw    json.RawMessage
}

// ParseAction decodes a JSON action object.
func ParseAction(data []byte) (Action, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", apperror.ErrMalformedAction)
	}
	var name string
	if err := json.Unmarshal(fields["action"], &name); err != nil || name == "" {
		return Action{}, fmt.Errorf("missing action name: %w", apperror.ErrMalformedAction)
	}
	delete(fields, "action")
	return Action{Name: name, Fields: fields, Raw: append(json.RawMessage(nil), data...)}, nil
}

// NewAction builds an action from Go values, mainly for tests and the terminal shorthand.
func NewAction(name string, fields map[string]interface{}) Action {
	a := Action{Name: name, Fields: make(map[string]json.RawMessage, len(fields))}
	obj := map[string]interface{}{"action": name}
	for k, v := range fields {
		raw, _ := json.Marshal(v)
		a.Fields[k] = raw
		obj[k] = v
	}
	a.Raw, _ = json.Marshal(obj)
	return a
}

// Decode unmarshals a field into v.
func (a Action) Decode(key string, v interface{}) error {
	raw, ok := a.Fields[key]
	if !ok {
		return fmt.Errorf("%s: missing field %q: %w", a.Name, key, apperror.ErrMalformedAction)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: field %q: %w", a.Name, key, apperror.ErrMalformedAction)
	}
	return nil
}

// Int reads a field holding a number or a numeric string.
func (a Action) Int(key string) (int, error) {
	var n json.Number
	if err := a.Decode(key, &n); err != nil {
		var s string
		if a.Decode(key, &s) != nil {
			return 0, err
		}
		n = json.Number(s)
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return 0, fmt.Errorf("%s: field %q is not an integer: %w", a.Name, key, apperror.ErrMalformedAction)
		}
		i = int(f)
	}
	return i, nil
}

func (a Action) String(key string) (string, error) {
	var s string
	err := a.Decode(key, &s)
	return s, err
}

// UUID reads a field holding an id.
func (a Action) UUID(key string) (uuid.UUID, error) {
	s, err := a.String(key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: field %q is not an id: %w", a.Name, key, apperror.ErrMalformedAction)
	}
	return id, nil
}

// Details is the name and piece a player picks on joining.
type Details struct {
	Name  string `json:"name"`
	Piece string `json:"piece"`
}
