package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("quill command failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quill",
		Short:         "Terminal message composer with a file-based control channel",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringP("config", "c", "", "path to config file")

	root.AddCommand(newComposeCmd())
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newSendCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// parseLevel maps a config log level onto pslog. Unknown values fall back
// to info; config validation rejects them earlier.
func parseLevel(level string) pslog.Level {
	switch level {
	case "trace":
		return pslog.TraceLevel
	case "debug":
		return pslog.DebugLevel
	case "warn":
		return pslog.WarnLevel
	case "error":
		return pslog.ErrorLevel
	default:
		return pslog.InfoLevel
	}
}
