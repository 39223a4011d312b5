package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaoyhu/rsstvlm/internal/display"
	"github.com/yaoyhu/rsstvlm/internal/hardware"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Show the specs of the current node",
	Long: "Detects CPU, RAM and GPUs on the machine the command runs on. Inside a " +
		"SLURM allocation it also shows the job's environment, the same fields the " +
		"generated batch scripts echo at startup.",
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := hardware.Detect()
		if err != nil {
			return err
		}
		display.Node(os.Stdout, specs, globalJSON)
		return nil
	},
}
