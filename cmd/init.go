package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/firzaelbuho/bun-api-modular/internal/generator"
)

func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a modular Bun API project",
		Long:  "Write the Elysia project skeleton, an empty route registry and the bundled test module",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	cmd.Flags().Bool("force", false, "Overwrite existing files")
	cmd.Flags().Bool("dry-run", false, "Show what would be written without touching the disk")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation when overwriting")
	addDirFlag(cmd)

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")

	root, cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}

	if force && !dryRun && !yes {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Overwrite existing project files in %s? Registered routes, package.json and tsconfig.json are kept.", root),
			Default: false,
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("❌ Aborted")
			return nil
		}
	}

	fmt.Printf("🚀 Initializing %s in %s\n", cfg.Name, root)

	result, err := generator.New(root, cfg).RunInit(cmd.Context(), generator.InitOptions{
		Force:  force,
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}

	printChanges(result.Changes, result.DryRun)
	if result.DryRun {
		return nil
	}

	fmt.Printf("\n✅ Project initialized!\n")
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  bun install\n")
	fmt.Printf("  bun-api-modular create <module>\n")
	fmt.Printf("  bun-api-modular dev\n")

	return nil
}
