package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/quill/control"
)

type sendOptions struct {
	dir  string
	wait time.Duration
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Stage control requests for a running composer",
	}
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "control directory (default ~/.quill-control)")
	cmd.PersistentFlags().DurationVar(&opts.wait, "wait", 0, "wait this long for the composer's response and print it")

	var cursor int
	setBuffer := &cobra.Command{
		Use:   "set-buffer TEXT",
		Short: "Replace the composer buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := control.SetBuffer(args[0])
			if cmd.Flags().Changed("cursor") {
				c = control.SetBufferAt(args[0], cursor)
			}
			return stage(cmd, opts, "set_buffer", c)
		},
	}
	setBuffer.Flags().IntVar(&cursor, "cursor", 0, "byte offset of the cursor in the new buffer (default end)")

	cmd.AddCommand(
		setBuffer,
		&cobra.Command{
			Use:   "set-cursor OFFSET",
			Short: "Move the cursor to a byte offset",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				off, err := parseOffset(args[0])
				if err != nil {
					return err
				}
				return stage(cmd, opts, "set_cursor", control.SetCursor(off))
			},
		},
		&cobra.Command{
			Use:   "state",
			Short: "Ask the composer to report its state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return stage(cmd, opts, "state", control.GetState())
			},
		},
		&cobra.Command{
			Use:   "notify MESSAGE",
			Short: "Flash a notification in the composer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return stage(cmd, opts, "notification", control.Notify(args[0]))
			},
		},
		&cobra.Command{
			Use:   "history-previous",
			Short: "Load the previous history entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return stage(cmd, opts, control.TypeHistoryPrevious, control.HistoryPrevious())
			},
		},
		&cobra.Command{
			Use:   "history-next",
			Short: "Load the next history entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return stage(cmd, opts, control.TypeHistoryNext, control.HistoryNext())
			},
		},
		&cobra.Command{
			Use:   "edit-previous [STEPS_BACK]",
			Short: "Load the message STEPS_BACK entries before the newest",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 0
				if len(args) == 1 {
					n, err := parseOffset(args[0])
					if err != nil {
						return err
					}
					steps = n
				}
				return stage(cmd, opts, fmt.Sprintf("edit_previous_message(%d)", steps), control.EditPreviousMessage(steps))
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove a pending request",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				paths, err := control.ResolvePaths(opts.dir)
				if err != nil {
					return err
				}
				if err := control.RemoveRequest(paths); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared request at %s\n", paths.Request)
				return err
			},
		},
		newShowStateCmd(opts),
	)
	return cmd
}

func newShowStateCmd(opts *sendOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show-state",
		Short: "Print the most recent response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := control.ResolvePaths(opts.dir)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(paths.Response)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			return printJSON(cmd, data, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the file as is")
	return cmd
}

func parseOffset(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid offset %q: must be a non-negative integer", s)
	}
	return n, nil
}

// stage writes a one-command request and, with --wait, prints the response
// the composer writes for it.
func stage(cmd *cobra.Command, opts *sendOptions, label string, c control.Command) error {
	paths, err := control.ResolvePaths(opts.dir)
	if err != nil {
		return err
	}
	staged := time.Now()
	if err := control.WriteRequest(paths.Request, control.Request{Commands: []control.Command{c}}); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "requested %s via %s\n", label, paths.Request); err != nil {
		return err
	}
	if opts.wait <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.wait)
	defer cancel()
	data, err := waitResponse(ctx, paths.Response, staged)
	if err != nil {
		return err
	}
	return printJSON(cmd, data, false)
}

var errNoResponse = errors.New("no response before timeout")

// waitResponse polls path until it holds a response stamped at or after
// since.
func waitResponse(ctx context.Context, path string, since time.Time) ([]byte, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if data, err := os.ReadFile(path); err == nil {
			var resp control.Response
			if json.Unmarshal(data, &resp) == nil && resp.TimestampMs >= since.UnixMilli() {
				return data, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", errNoResponse, path)
		case <-ticker.C:
		}
	}
}

func printJSON(cmd *cobra.Command, data []byte, raw bool) error {
	out := cmd.OutOrStdout()
	if raw {
		_, err := fmt.Fprintln(out, string(bytes.TrimRight(data, "\n")))
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	_, err := fmt.Fprintln(out, pretty.String())
	return err
}
