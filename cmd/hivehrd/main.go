package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hivehr/hivehr/internal/cli"
	"github.com/hivehr/hivehr/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hivehrd",
		Short: "HiveHR daemon and CLI",
		Long:  "HiveHR daemon for running the HR assistant API server and managing organizations, employees and API keys",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.OrgCmd())
	rootCmd.AddCommand(admin.EmployeeCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())
	rootCmd.AddCommand(admin.ReindexCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
