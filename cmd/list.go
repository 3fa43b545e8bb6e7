package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
	"github.com/firzaelbuho/bun-api-modular/internal/ledger"
)

func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked modules",
		Long:  "Show the modules recorded in the module ledger and, optionally, the latest log lines",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().Int("log", 0, "Also show the last N module log lines")
	addDirFlag(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	logLines, _ := cmd.Flags().GetInt("log")

	root, cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}

	guard := fsguard.New(root, fsguard.Options{})
	l := ledger.New(cfg.Ledger.Log, cfg.Ledger.State)

	state, err := l.Load(guard)
	if err != nil {
		return err
	}
	fmt.Println(renderModules(state.Modules))

	if logLines > 0 {
		lines, err := l.Tail(guard, logLines)
		if err != nil {
			return err
		}
		if len(lines) > 0 {
			fmt.Println(renderLog(filepath.Base(cfg.Ledger.Log), lines))
		}
	}

	return nil
}
