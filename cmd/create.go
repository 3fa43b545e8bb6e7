package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/firzaelbuho/bun-api-modular/internal/generator"
	"github.com/firzaelbuho/bun-api-modular/internal/naming"
)

func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [module-path]",
		Short: "Create a module and register its route",
		Long:  "Generate types, values, service and route files for a module, register the route and record it in the module ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCreate,
	}

	cmd.Flags().String("route", "", "Route path (default: pluralized module name)")
	cmd.Flags().Bool("force", false, "Overwrite existing module files")
	cmd.Flags().Bool("dry-run", false, "Show what would be written without touching the disk")
	addDirFlag(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	route, _ := cmd.Flags().GetString("route")
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var modulePath string
	if len(args) > 0 {
		modulePath = args[0]
	} else {
		prompt := &survey.Input{
			Message: "Module path:",
			Help:    "Slash-separated, e.g. user or shop/product",
		}
		validate := func(ans interface{}) error {
			s, _ := ans.(string)
			return naming.ValidateModulePath(s)
		}
		if err := survey.AskOne(prompt, &modulePath, survey.WithValidator(validate)); err != nil {
			return err
		}
	}

	root, cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}

	result, err := generator.New(root, cfg).RunCreate(cmd.Context(), modulePath, generator.CreateOptions{
		Route:  route,
		Force:  force,
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}

	printChanges(result.Changes, result.DryRun)

	if !result.Registered {
		fmt.Printf("ℹ️  Route %s was already registered\n", result.Module.Route)
	}
	if !result.Tracked {
		fmt.Printf("ℹ️  Module %s was already tracked\n", result.Module.ModulePath)
	}
	if !result.DryRun {
		fmt.Printf("\n✅ Module %s created at %s\n", result.Module.ModulePath, result.Module.Route)
	}

	return nil
}
