package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yaoyhu/rsstvlm/internal/slurm"
	"github.com/yaoyhu/rsstvlm/internal/tui"
)

var watchAll bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the queue in an interactive view",
	Long: "Opens a full-screen queue view that refreshes every few seconds. Keys: " +
		"j/k move, f cycles the state filter, enter shows job details, q quits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		client := newSlurmClient()
		prefix := jobPrefix
		if watchAll {
			prefix = ""
		}
		fetch := func(ctx context.Context) ([]slurm.JobInfo, error) {
			return client.Queue(ctx, prefix)
		}
		return tui.Run(ctx, fetch)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchAll, "all", false, "Include jobs not submitted by this launcher")
}
