package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fsctl",
	Short: "fsctl is a command line tool for the fieldops job service",
	Long: `fsctl is the command-line interface for the fieldops service.

Every job gets a sequential Service Report Number when it is created and moves
through pending, in_progress and completed. Completing a job stamps its
completion date and appends the standard safety sentence to the action taken.

Common workflows:

  Create a job:
    fsctl create --client <id> --site <id> --description "No heat"

  Start and complete it:
    fsctl status <job-id> in_progress --arrival 2024-03-01T09:00:00Z
    fsctl status <job-id> completed --action-taken "Replaced igniter."

  Record labour and parts:
    fsctl parts add <job-id> "Labour"
    fsctl parts adjust <job-id> 0 --steps 2

  Show the next Service Report Number:
    fsctl counter

Configuration:
  Set the API endpoint and credentials via flags, environment variables or
  $HOME/.fsctl.yaml:
    FIELDOPS_URL      API endpoint (default: http://localhost:6161)
    FIELDOPS_TOKEN    Technician API key`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".fsctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "FIELDOPS_VARNAME"
	viper.SetEnvPrefix("FIELDOPS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newClient returns a client for the configured controller, or nil after
// telling the user the token is missing.
func newClient(cmd *cobra.Command) *JobClient {
	token := viper.GetString("token")
	if token == "" {
		cmd.Println("API token not found. Please set it using the --token flag or the FIELDOPS_TOKEN environment variable")
		return nil
	}
	return NewJobClient(viper.GetString("url"), token)
}

// printError reports an API or transport failure.
func printError(cmd *cobra.Command, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fsctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "fieldops controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "Technician API key")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}
