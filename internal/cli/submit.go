package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var submitCmd = &cobra.Command{
	Use:   "submit <script>",
	Short: "Validate and submit an existing batch script",
	Long: "Runs an already-written batch script through the launcher's validation " +
		"(shebang present, no unresolved merge-conflict markers) and hands it to sbatch. " +
		"For jobs the generator does not cover yet.",
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	script, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	ctx, cancel := signalContext()
	defer cancel()
	jobID, err := newSlurmClient().SubmitScript(ctx, script)
	if err != nil {
		return err
	}
	logger.Info("script submitted", zap.String("script", args[0]), zap.Int("job_id", jobID))
	fmt.Printf("Submitted batch job %d\n", jobID)
	return nil
}
