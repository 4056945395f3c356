package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pkt.systems/pslog"

	"github.com/iw2rmb/quill/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the quill config file",
	}

	var overwrite bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault(configPath(cmd), overwrite)
			if err != nil {
				return err
			}
			pslog.Ctx(cmd.Context()).Info("config wrote", "path", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing config")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(cmd))
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
