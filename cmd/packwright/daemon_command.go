package main

import (
	"github.com/spf13/cobra"

	"packwright/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var development bool
	cmd := &cobra.Command{
		Use:          "daemon",
		Short:        "Run the packwright daemon (internal)",
		Hidden:       true,
		Annotations:  map[string]string{"skipConfigLoad": "true"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    ctx.logLevel(),
				Development: development,
			})
		},
	}
	cmd.Flags().BoolVar(&development, "dev", false, "Enable development logging output")
	return cmd
}
