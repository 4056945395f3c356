package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/pslog"

	"github.com/iw2rmb/quill/buffer"
	"github.com/iw2rmb/quill/composer"
	"github.com/iw2rmb/quill/internal/config"
)

func newComposeCmd() *cobra.Command {
	var (
		text      string
		rows      int
		noControl bool
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Run the interactive composer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(cmd))
			if err != nil {
				return err
			}
			logger, closeLog, err := openLogFile(cfg.Logging)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if cfg.UI.NoColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
			ccfg := composerConfig(cfg, text, logger)
			if !noControl {
				ccfg.Control = &composer.ControlConfig{
					Dir:          cfg.Control.Dir,
					PollInterval: cfg.Control.PollInterval(),
					Watch:        cfg.Control.Watch,
					Context:      ctx,
				}
			}
			c, err := composer.New(ccfg)
			if err != nil {
				return err
			}
			logger.Info("composer starting", "raw", cfg.Input.Raw, "control", !noControl)
			return runProgram(ctx, app{c: c, rows: rows}, cfg.Input.Raw, logger)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "initial buffer text")
	cmd.Flags().IntVar(&rows, "rows", 8, "maximum composer height in rows")
	cmd.Flags().BoolVar(&noControl, "no-control", false, "disable the control channel")
	return cmd
}

func composerConfig(cfg config.Config, text string, logger pslog.Logger) composer.Config {
	return composer.Config{
		Text:   text,
		Prompt: cfg.UI.Prompt,
		Style:  composer.DefaultStyle(nil),
		Buffer: buffer.Options{
			HistoryLimit: cfg.Editor.HistoryLimit,
			KillRingSize: cfg.Editor.KillRingSize,
			WrapWidth:    cfg.Editor.WrapWidth,
			TabWidth:     cfg.Editor.TabWidth,
		},
		EscapeTimeout: cfg.Input.EscapeTimeout(),
		HistoryLimit:  cfg.Editor.HistoryLimit,
		ToastDuration: cfg.UI.ToastDuration(),
		Logger:        logger,
	}
}

// openLogFile opens the composer's log. The terminal belongs to the UI, so an
// empty path discards logs instead of writing to stderr.
func openLogFile(cfg config.LoggingConfig) (pslog.Logger, func(), error) {
	opts := pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
		MinLevel:      parseLevel(cfg.Level),
	}
	if cfg.File == "" {
		return pslog.NewWithOptions(io.Discard, opts), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return pslog.NewWithOptions(f, opts), func() { _ = f.Close() }, nil
}

// runProgram runs the composer. In raw mode quill puts the terminal in raw
// mode itself and feeds stdin bytes to the decoder; otherwise Bubble Tea
// reads keys.
func runProgram(ctx context.Context, m app, raw bool, logger pslog.Logger) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if !raw {
		p := tea.NewProgram(m, opts...)
		_, err := p.Run()
		return ignoreKilled(err)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("raw input requires a terminal on stdin")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, state); err != nil {
			logger.Warn("terminal restore failed", "err", err)
		}
	}()

	p := tea.NewProgram(m, append(opts, tea.WithInput(nil))...)
	go readStdin(os.Stdin, p, logger)
	_, err = p.Run()
	return ignoreKilled(err)
}

// readStdin forwards raw bytes to the program. It never decodes; the model's
// decoder owns all parsing so escape deadlines stay on the event loop.
func readStdin(r io.Reader, p *tea.Program, logger pslog.Logger) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			p.Send(composer.RawInputMsg{Data: data, At: time.Now()})
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("stdin read failed", "err", err)
			}
			p.Quit()
			return
		}
	}
}

func ignoreKilled(err error) error {
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
