package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firzaelbuho/bun-api-modular/internal/check"
	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
)

func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the route registry against the module ledger",
		Long:  "Report registry entries without imports, missing route files and tracked modules that are not registered or missing on disk",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	cmd.Flags().Bool("watch", false, "Re-run the check whenever project files change")
	addDirFlag(cmd)

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	watch, _ := cmd.Flags().GetBool("watch")

	root, cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}

	if watch {
		fmt.Printf("👁️  Watching %s (Ctrl+C to stop)\n", root)
		return check.Watch(cmd.Context(), root, cfg, func(report *check.Report, err error) {
			fmt.Printf("\n\x1b[90m[%s]\x1b[0m\n", time.Now().Format("15:04:05"))
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				return
			}
			fmt.Println(renderReport(report))
		})
	}

	report, err := check.Run(fsguard.New(root, fsguard.Options{}), cfg)
	if err != nil {
		return err
	}

	fmt.Println(renderReport(report))
	if !report.OK() {
		return fmt.Errorf("found %d issue(s)", len(report.Issues))
	}
	return nil
}
