package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaoyhu/rsstvlm/internal/display"
)

var (
	statusAll      bool
	statusFinished bool
)

var statusCmd = &cobra.Command{
	Use:   "status [jobid...]",
	Short: "Show this launcher's jobs in the queue",
	Long: "Without arguments, lists the launcher's jobs currently in the queue. With " +
		"job IDs or --finished, queries accounting (sacct) instead, which also covers " +
		"completed and failed jobs.",
	RunE: runStatus,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <jobid>...",
	Short: "Cancel jobs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCancel,
}

var cancelYes bool

func init() {
	statusCmd.Flags().BoolVar(&statusAll, "all", false, "Include jobs not submitted by this launcher")
	statusCmd.Flags().BoolVar(&statusFinished, "finished", false, "Query accounting for finished jobs too")
	cancelCmd.Flags().BoolVarP(&cancelYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()
	client := newSlurmClient()

	if len(args) > 0 || statusFinished {
		ids, err := parseJobIDs(args)
		if err != nil {
			return err
		}
		jobs, err := client.Accounting(ctx, ids)
		if err != nil {
			return err
		}
		display.Queue(os.Stdout, jobs, globalJSON)
		return nil
	}

	prefix := jobPrefix
	if statusAll {
		prefix = ""
	}
	jobs, err := client.Queue(ctx, prefix)
	if err != nil {
		return err
	}
	display.Queue(os.Stdout, jobs, globalJSON)
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	ids, err := parseJobIDs(args)
	if err != nil {
		return err
	}
	if !cancelYes && !confirm(fmt.Sprintf("Cancel %d job(s)?", len(ids))) {
		fmt.Println("Aborted.")
		return nil
	}
	ctx, cancel := signalContext()
	defer cancel()
	if err := newSlurmClient().Cancel(ctx, ids...); err != nil {
		return err
	}
	fmt.Printf("Cancelled %d job(s).\n", len(ids))
	return nil
}

func parseJobIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid job id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
