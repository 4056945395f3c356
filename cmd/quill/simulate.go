package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/composer"
	"github.com/iw2rmb/quill/control"
	"github.com/iw2rmb/quill/edit"
)

func newSimulateCmd() *cobra.Command {
	var (
		statePath   string
		requestPath string
		outputPath  string
		history     []string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Apply a control request to a state file without a terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			state, err := loadState(statePath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(requestPath)
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}

			resp, out := simulate(state, raw, history, time.Now())
			for _, s := range out.Skipped {
				logger.Info("simulate command skipped", "index", s.Index, "type", s.Type, "err", s.Err)
			}

			if outputPath != "" {
				return control.WriteResponse(outputPath, resp)
			}
			data, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&statePath, "state", "", "initial state JSON file (empty buffer when omitted)")
	cmd.Flags().StringVar(&requestPath, "request", "", "request JSON file")
	cmd.Flags().StringVar(&outputPath, "output", "", "response path (stdout when omitted)")
	cmd.Flags().StringSliceVar(&history, "history", nil, "submitted messages, oldest first, for history commands")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

// simulate runs raw against state the way the composer would.
func simulate(state control.State, raw []byte, history []string, now time.Time) (control.Response, control.Outcome) {
	buf := buffer.New(state.Buffer, buffer.Options{})
	// Out-of-range cursors clamp like any other SetCursor.
	_, _ = buf.Apply(edit.SetCursor(state.Cursor))

	board := &control.StatusBoard{}
	board.SetTaskRunning(state.IsTaskRunning)
	board.SetSummary(state.TaskSummary)

	h := composer.NewHistory(0)
	for _, entry := range history {
		h.Add(entry)
	}

	out := control.Execute(raw, buf, control.Collaborators{History: h, Status: board})
	errMsg := ""
	if out.Err != nil {
		errMsg = out.Err.Error()
	}
	resp := control.BuildResponse(control.CaptureState(buf, board), out.Status, out.Applied, errMsg, now)
	return resp, out
}

func loadState(path string) (control.State, error) {
	if path == "" {
		return control.State{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return control.State{}, fmt.Errorf("read state: %w", err)
	}
	var st control.State
	if err := json.Unmarshal(data, &st); err != nil {
		return control.State{}, fmt.Errorf("parse state %s: %w", path, err)
	}
	if st.Cursor < 0 {
		st.Cursor = 0
	}
	return st, nil
}
