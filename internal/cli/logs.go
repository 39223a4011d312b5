package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaoyhu/rsstvlm/internal/logtail"
)

var logsFollow bool

var logsCmd = &cobra.Command{
	Use:   "logs <jobid>",
	Short: "Show or follow a job's output file",
	Long: "Finds the job's output file under the configured log directory and prints " +
		"it. With --follow, keeps streaming new output until interrupted, which works " +
		"across the file being created after submission.",
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep streaming new output")
}

func runLogs(cmd *cobra.Command, args []string) error {
	ids, err := parseJobIDs(args)
	if err != nil {
		return err
	}
	path, err := findLogFile(ids[0])
	if err != nil {
		return err
	}
	if logsFollow {
		ctx, cancel := signalContext()
		defer cancel()
		logger.Info("following job output", zap.String("path", path))
		return logtail.Follow(ctx, path, os.Stdout)
	}
	return logtail.Dump(path, os.Stdout)
}

// findLogFile locates the output file for a job ID. Output paths end in
// "-<jobid>.out", so a glob on the suffix is enough.
func findLogFile(jobID int) (string, error) {
	pattern := filepath.Join(cfg.Cluster.LogDir, fmt.Sprintf("*-%d.out", jobID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no output file for job %d under %s", jobID, cfg.Cluster.LogDir)
	}
	sort.Strings(matches)
	return matches[0], nil
}
