// Package cli wires the launcher's cobra command tree. Every command that
// talks to the cluster goes through the shared config and slurm client built
// in the root's PersistentPreRunE.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaoyhu/rsstvlm/internal/config"
)

// Version is set by main from ldflags or "dev". Used for --version / -v.
var Version string

var (
	globalConfigPath string
	globalEnvFile    string
	globalJSON       bool
	globalVerbose    bool
	showVersion      bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rsstvlm",
	Short: "Launch and monitor the lab's model-serving and pipeline jobs on SLURM",
	Long: "rsstvlm generates, validates and submits the SLURM batch jobs behind the " +
		"retrieval stack: vllm serving jobs for the Qwen3-VL and embedding models, the " +
		"knowledge-graph pipeline, and the paper downloader. It replaces the old " +
		"hand-edited batch scripts with one reviewed script generator plus queue, log " +
		"and endpoint tooling.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			if Version == "" {
				Version = "dev"
			}
			fmt.Println(Version)
			os.Exit(0)
		}
		var err error
		cfg, err = config.Load(globalConfigPath, globalEnvFile)
		if err != nil {
			return err
		}
		logger, err = config.BuildLogger(cfg.LogFile, globalVerbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalConfigPath, "config", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&globalEnvFile, "env-file", "", "Environment file to load (default: ./.env)")
	rootCmd.PersistentFlags().BoolVar(&globalJSON, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVar(&globalVerbose, "verbose", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Print version and exit")

	rootCmd.AddCommand(serveCmd, embedCmd, graphragCmd, papersCmd, submitCmd,
		statusCmd, cancelCmd, logsCmd, checkCmd, nodeCmd, listCmd, infoCmd,
		watchCmd, configCmd)
}

// Execute runs the root command. Returns error for exit code handling.
func Execute() error {
	return rootCmd.Execute()
}
