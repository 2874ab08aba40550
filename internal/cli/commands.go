package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/tansive/restdb/internal/common/logtrace"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string
	insecure   bool
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewRootCmd builds the restdb command tree. Flag values are reset every time it is
// called.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "restdb [command] [flags]",
		Short: "restdb CLI - call the REST resources registered in a settings file",
		Long: `restdb is a command line interface for the REST resources registered in a
settings file. Every call carries the stored access token and saves any
refreshed token the server sends back.

Examples:
  # List registered routes and their operations
  restdb routes

  # Fetch a collection, or one entity by id
  restdb get users
  restdb get users 42 --select name

  # Create an entity from a file, overriding a field
  restdb create users -f user.yaml --set name=ada

  # Inspect the stored token
  restdb token show`,
		PersistentPreRunE: preRunHandlePersistents,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to settings file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRoutesCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newTokenCmd())
	return rootCmd
}

// Execute runs the command tree against os.Args and exits non-zero on failure.
// This is called by main.main().
func Execute(ctx context.Context) {
	rootCmd := NewRootCmd()
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrAlreadyHandled) {
			reportError(os.Stdout, os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportError prints err as {"error": ...} to stdout in JSON mode, in red to stderr
// otherwise.
func reportError(stdout, stderr io.Writer, err error) {
	if jsonOutput {
		printJSON(stdout, map[string]string{
			"error": err.Error(),
		})
		return
	}
	errorLabel.Fprintf(stderr, "Error: %v\n", err)
}

// preRunHandlePersistents sets up logging and opens the settings file for every
// command that needs it.
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	logtrace.InitLogger(logLevel)

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "version" || c.Name() == "help" {
			return nil
		}
	}

	s, err := openSession(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("restdb settings file not found at %s", configFile)
		}
		return err
	}
	active = s
	return nil
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of restdb",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"version":     getCLIVersion(),
					"config_file": configFile,
				})
				return
			}
			cmd.Printf("restdb CLI %s\n", getCLIVersion())
			cmd.Printf("Settings file: %s\n", configFile)
		},
	}
}

// printJSON prints data as indented JSON to w
func printJSON(w io.Writer, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
