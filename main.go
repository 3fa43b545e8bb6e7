package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firzaelbuho/bun-api-modular/cmd"
	"github.com/firzaelbuho/bun-api-modular/internal/ctxlog"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "bun-api-modular",
		Short:         "Modular Bun + Elysia API generator",
		Long:          `bun-api-modular scaffolds a Bun + Elysia REST API and generates modules into it without overwriting your work.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), ctxlog.New(debug)))
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("🚀 bun-api-modular v" + version)
			fmt.Println("Run 'bun-api-modular --help' for available commands")
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	// Add commands
	rootCmd.AddCommand(cmd.InitCmd())
	rootCmd.AddCommand(cmd.CreateCmd())
	rootCmd.AddCommand(cmd.ListCmd())
	rootCmd.AddCommand(cmd.CheckCmd())
	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.ConfigCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
