package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaoyhu/rsstvlm/internal/display"
	"github.com/yaoyhu/rsstvlm/internal/models"
	"github.com/yaoyhu/rsstvlm/internal/plan"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List model presets with their fit on the configured node shape",
	RunE: func(cmd *cobra.Command, args []string) error {
		display.Presets(os.Stdout, plan.AnalyzeAll(models.All(), nodeShape(), 0), nodeShape(), globalJSON)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <preset>",
	Short: "Show one preset's details and sizing plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := models.Lookup(args[0])
		if err != nil {
			return err
		}
		display.Preset(os.Stdout, plan.Analyze(m, nodeShape(), 0), nodeShape(), globalJSON)
		return nil
	},
}
