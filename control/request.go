package control

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Command types understood by the channel.
const (
	TypeSetBuffer           = "set_buffer"
	TypeSetCursor           = "set_cursor"
	TypeGetState            = "get_state"
	TypeNotify              = "notify"
	TypeHistoryPrevious     = "history_previous"
	TypeHistoryNext         = "history_next"
	TypeEditPreviousMessage = "edit_previous_message"
)

// ErrMalformedRequest reports a request that is not an object with a
// commands array.
var ErrMalformedRequest = errors.New("malformed request")

// Command is one remote command. Only the fields relevant to Type are set.
type Command struct {
	Type      string  `json:"type"`
	Text      *string `json:"text,omitempty"`
	Cursor    *int    `json:"cursor,omitempty"`
	Message   *string `json:"message,omitempty"`
	StepsBack *int    `json:"steps_back,omitempty"`
}

// Request is the staged batch.
type Request struct {
	Commands []Command `json:"commands"`
}

func SetBuffer(text string) Command { return Command{Type: TypeSetBuffer, Text: &text} }

func SetBufferAt(text string, cursor int) Command {
	return Command{Type: TypeSetBuffer, Text: &text, Cursor: &cursor}
}

func SetCursor(cursor int) Command { return Command{Type: TypeSetCursor, Cursor: &cursor} }

func GetState() Command { return Command{Type: TypeGetState} }

func Notify(message string) Command { return Command{Type: TypeNotify, Message: &message} }

func HistoryPrevious() Command { return Command{Type: TypeHistoryPrevious} }

func HistoryNext() Command { return Command{Type: TypeHistoryNext} }

func EditPreviousMessage(stepsBack int) Command {
	return Command{Type: TypeEditPreviousMessage, StepsBack: &stepsBack}
}

// batch is a parsed request: the raw commands, not yet validated.
type batch struct {
	commands []json.RawMessage
	empty    bool
}

// parseBatch checks the request envelope. A blank body yields an empty batch
// marked empty; a missing commands key is an empty list.
func parseBatch(raw []byte) (batch, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return batch{empty: true}, nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return batch{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if err := requestSchema().Validate(doc); err != nil {
		return batch{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	var env struct {
		Commands []json.RawMessage `json:"commands"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return batch{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return batch{commands: env.Commands}, nil
}

// decodeCommand validates one raw command against the schema for its type.
// Unknown types report errUnknownCommand. On error the returned Command
// carries only the type, when one could be read.
func decodeCommand(raw json.RawMessage) (Command, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	known := Command{Type: head.Type}
	schema, ok := commandSchema(head.Type)
	if !ok {
		return known, fmt.Errorf("%w: %q", errUnknownCommand, head.Type)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return known, fmt.Errorf("decode command: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return known, fmt.Errorf("invalid %s: %w", head.Type, err)
	}

	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return known, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return cmd, nil
}

var errUnknownCommand = errors.New("unknown command")
