package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	dreamweave "github.com/oneirolab/dreamweave/pkg"
	pkgdb "github.com/oneirolab/dreamweave/pkg/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "dreamweave",
	Short:   "A voice-first dream journal with analysis, prompt enhancement and AI imagery.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", dreamweave.Version),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for dreamweave.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(dreamweave completion bash)

  Bash (persist):
    $ dreamweave completion bash > /etc/bash_completion.d/dreamweave

  Zsh:
    $ dreamweave completion zsh > "${fpath[1]}/_dreamweave"

  Fish:
    $ dreamweave completion fish | source
    $ dreamweave completion fish > ~/.config/fish/completions/dreamweave.fish

  PowerShell:
    PS> dreamweave completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dreamweave",
	Long:  `All software has versions. This is dreamweave's`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(dreamweave.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the dreamweave database",
	Long:  `Provides commands for managing the dreamweave SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the dreamweave database schema to the latest version for the dreamsdb component",
	Long: `Connects to the SQLite database at the specified path (provided with the --db flag) and applies any necessary
schema migrations to bring the dreamsdb component up to the current application schema version.
If the database does not exist or is uninitialized for this component, it will be created
and initialized with the latest schema for the dreamsdb component.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return errors.New("database path is required")
		}

		fmt.Printf("Attempting to upgrade dreamsdb component in database at: %s (WAL: %t, Sync: %s)\n", dbPath, walMode, syncMode)

		dbConn, err := pkgdb.Open(dbPath, walMode, syncMode)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return pkgdb.Upgrade(dbConn, dbPath, pkgdb.TargetSchemaVersion)
	},
}

func initCmd() {
	// Define persistent DB flags on rootCmd so all commands can use them
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (uses system-specific default if not provided)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", true, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", "NORMAL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML configuration file (optional)")
	rootCmd.PersistentFlags().StringVar(&userIDFlag, "user", "", "User scoping most commands (defaults to the single-user id)")

	dbUpgradeCmd.MarkFlagRequired("db")

	dbCmd.AddCommand(dbUpgradeCmd)

	initDreamsCmd()
	initCaptureCmd()
	initPromptCmd()
	initGenerateCmd()
	initExportCmd()
	initPrivacyCmd()
	initStatsCmd()
	rootCmd.AddCommand(
		completionCmd,
		versionCmd,
		dbCmd,
		dreamsCmd,
		captureCmd,
		promptCmd,
		generateCmd,
		exportCmd,
		importCmd,
		privacyCmd,
		statsCmd,
		charactersCmd,
		mcpCmd,
	)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
