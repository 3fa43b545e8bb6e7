package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firzaelbuho/bun-api-modular/internal/config"
	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
)

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage project configuration",
		Long:  "Validate, view, and create modular.yaml",
	}

	cmd.AddCommand(configValidateCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configInitCmd())

	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long:  "Validate the syntax and structure of modular.yaml",
		Args:  cobra.NoArgs,
		RunE:  runConfigValidate,
	}

	addDirFlag(cmd)

	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show configuration information",
		Long:  "Display the effective configuration, including defaults and environment overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	cmd.Flags().Bool("verbose", false, "Print the effective configuration as YAML")
	addDirFlag(cmd)

	return cmd
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long:  "Create modular.yaml with default values",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}

	cmd.Flags().Bool("force", false, "Overwrite existing configuration file")
	cmd.Flags().String("name", "", "Project name (default: directory name)")
	cmd.Flags().Int("port", 0, "Dev server port (default: 3000)")
	addDirFlag(cmd)

	return cmd
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	root, err := projectDir(cmd)
	if err != nil {
		return err
	}

	options := config.DefaultLoadOptions(root)
	options.AllowMissing = false
	options.ApplyDefaults = false
	options.LoadEnv = false
	cm := config.NewConfigManager(options)

	fmt.Printf("🔍 Validating configuration file: %s\n", cm.ConfigPath())

	cfg, err := cm.LoadConfig()
	if err != nil {
		fmt.Printf("❌ Configuration validation failed\n")
		return err
	}

	fmt.Printf("✅ Configuration is valid!\n")
	fmt.Printf("\n%s\n", config.GetConfigInfo(cm.ConfigPath(), cfg).String())
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	root, err := projectDir(cmd)
	if err != nil {
		return err
	}

	cm := config.NewConfigManager(config.DefaultLoadOptions(root))
	cfg, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	fmt.Println(config.GetConfigInfo(cm.ConfigPath(), cfg).String())

	if verbose {
		content, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s", content)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	name, _ := cmd.Flags().GetString("name")
	port, _ := cmd.Flags().GetInt("port")

	root, err := projectDir(cmd)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig(root)
	if name != "" {
		cfg.Name = name
	}
	if port != 0 {
		cfg.Port = port
	}

	content, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	guard := fsguard.New(root, fsguard.Options{Force: force})
	if err := guard.WriteFile(config.DefaultConfigFile, content); err != nil {
		return err
	}

	fmt.Printf("✅ Created %s\n", guard.Path(config.DefaultConfigFile))
	return nil
}
