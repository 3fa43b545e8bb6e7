package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/firzaelbuho/bun-api-modular/internal/config"
	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
)

// WorkDirEnv, when set, replaces the current directory as the default
// project directory.
const WorkDirEnv = "MODULAR_WORK_DIR"

func addDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Project directory (default: current directory)")
}

func projectDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = os.Getenv(WorkDirEnv)
	}
	if dir == "" {
		dir = "."
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory %s: %w", dir, err)
	}
	return abs, nil
}

// loadProject resolves the project directory and loads its configuration.
func loadProject(cmd *cobra.Command) (string, *config.ProjectConfig, error) {
	root, err := projectDir(cmd)
	if err != nil {
		return "", nil, err
	}

	cfg, err := config.LoadProject(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

var changeIcons = map[fsguard.ChangeKind]string{
	fsguard.ChangeMkdir:     "📁",
	fsguard.ChangeCreate:    "✨",
	fsguard.ChangeOverwrite: "♻️ ",
	fsguard.ChangeUpdate:    "📝",
	fsguard.ChangeAppend:    "➕",
	fsguard.ChangeSkip:      "⏭️ ",
}

func printChanges(changes []fsguard.Change, dryRun bool) {
	if dryRun {
		fmt.Println("🔍 Dry run, nothing was written. Planned changes:")
	}
	for _, change := range changes {
		fmt.Printf("  %s %-9s %s\n", changeIcons[change.Kind], change.Kind, change.Path)
	}
}
