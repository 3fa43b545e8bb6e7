package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firzaelbuho/bun-api-modular/internal/dev"
)

func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the dev server",
		Long:  "Run the configured dev command (bun --watch by default) with PORT and .env applied",
		Args:  cobra.NoArgs,
		RunE:  runDev,
	}

	addDirFlag(cmd)

	return cmd
}

func runDev(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")

	root, cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}

	return dev.NewRunner(root, cfg, debug).Run(cmd.Context())
}
