package control

import (
	"errors"
	"fmt"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/edit"
)

// Engine is the buffer the channel drives. *buffer.Buffer implements it.
type Engine interface {
	ApplyRemote(cmd edit.Command) (buffer.Change, error)
	Snapshot() buffer.State
}

// Notifier shows a notify message to the user.
type Notifier interface {
	Notify(message string)
}

// History serves submitted messages for the history_* commands. Each method
// returns false when there is no such entry.
type History interface {
	Previous() (string, bool)
	Next() (string, bool)
	// Back returns the entry stepsBack places before the newest one.
	Back(stepsBack int) (string, bool)
}

// Collaborators are the optional host services commands may use.
type Collaborators struct {
	Notifier Notifier
	History  History
	Status   TaskStatus
}

// Skip records a command that was not applied.
type Skip struct {
	Index int
	Type  string
	Err   error
}

// Outcome is the result of running one request.
type Outcome struct {
	Status  Status
	Applied []string
	Skipped []Skip
	Err     error
}

var errNoHistoryEntry = errors.New("no history entry")

// Execute runs raw as one request against eng without touching the file
// system. A malformed envelope rejects the whole batch; a malformed or
// unknown command is skipped and the rest still apply.
func Execute(raw []byte, eng Engine, col Collaborators) Outcome {
	b, err := parseBatch(raw)
	if err != nil {
		return Outcome{Status: StatusError, Applied: []string{}, Err: err}
	}
	return applyBatch(b, eng, col)
}

func applyBatch(b batch, eng Engine, col Collaborators) Outcome {
	if b.empty {
		return Outcome{Status: StatusNoRequest, Applied: []string{}}
	}
	out := Outcome{Status: StatusOK, Applied: []string{}}
	for i, raw := range b.commands {
		cmd, err := decodeCommand(raw)
		if err == nil {
			err = applyCommand(cmd, eng, col)
		}
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Index: i, Type: cmd.Type, Err: err})
			continue
		}
		out.Applied = append(out.Applied, cmd.Type)
	}
	if len(out.Applied) == 0 {
		out.Status = StatusNoRequest
	}
	return out
}

func applyCommand(cmd Command, eng Engine, col Collaborators) error {
	switch cmd.Type {
	case TypeSetBuffer:
		ec := edit.SetBuffer(*cmd.Text)
		if cmd.Cursor != nil {
			ec = edit.SetBufferAt(*cmd.Text, *cmd.Cursor)
		}
		return applyEdit(eng, ec)
	case TypeSetCursor:
		return applyEdit(eng, edit.SetCursor(*cmd.Cursor))
	case TypeGetState:
		return nil
	case TypeNotify:
		if col.Notifier != nil {
			col.Notifier.Notify(*cmd.Message)
		}
		return nil
	case TypeHistoryPrevious, TypeHistoryNext, TypeEditPreviousMessage:
		text, err := historyEntry(cmd, col.History)
		if err != nil {
			return err
		}
		return applyEdit(eng, edit.SetBuffer(text))
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd.Type)
	}
}

func historyEntry(cmd Command, h History) (string, error) {
	if h == nil {
		return "", fmt.Errorf("%s: history unavailable", cmd.Type)
	}
	var (
		text string
		ok   bool
	)
	switch cmd.Type {
	case TypeHistoryPrevious:
		text, ok = h.Previous()
	case TypeHistoryNext:
		text, ok = h.Next()
	default:
		steps := 0
		if cmd.StepsBack != nil {
			steps = *cmd.StepsBack
		}
		text, ok = h.Back(steps)
	}
	if !ok {
		return "", fmt.Errorf("%s: %w", cmd.Type, errNoHistoryEntry)
	}
	return text, nil
}

func applyEdit(eng Engine, cmd edit.Command) error {
	if _, err := eng.ApplyRemote(cmd); err != nil {
		return fmt.Errorf("apply %s: %w", cmd.Kind, err)
	}
	return nil
}
