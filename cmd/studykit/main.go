package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	rootCommand := &cobra.Command{
		Use:           "studykit",
		Short:         "Operator commands for the study review scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a config file")

	rootCommand.AddCommand(newMigrateCommand())
	rootCommand.AddCommand(newDueCommand())
	rootCommand.AddCommand(newUpcomingCommand())
	rootCommand.AddCommand(newReviewCommand())

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
