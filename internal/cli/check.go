package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaoyhu/rsstvlm/internal/display"
	"github.com/yaoyhu/rsstvlm/internal/endpoint"
)

var (
	checkWait    bool
	checkTimeout time.Duration
	checkModel   string
	checkSmoke   bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the configured inference endpoint",
	Long: "Lists the models served at the configured endpoint. With --wait, polls " +
		"until the endpoint answers, which covers the window where a serve job is " +
		"still loading weights. With --smoke, additionally sends a one-line chat " +
		"completion (and an embedding request when the embedding model is set).",
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkWait, "wait", false, "Poll until the endpoint is ready")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Minute, "Give up waiting after this long")
	checkCmd.Flags().StringVar(&checkModel, "model", "", "Model to wait for and smoke-test (default: configured llm)")
	checkCmd.Flags().BoolVar(&checkSmoke, "smoke", false, "Send a test completion after the endpoint is up")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	model := checkModel
	if model == "" {
		model = cfg.Endpoint.Model
	}
	client := endpoint.New(cfg.BaseURL(), cfg.Endpoint.APIKey)
	logger.Info("checking endpoint",
		zap.String("base_url", cfg.BaseURL()), zap.String("model", model))

	if checkWait {
		waitCtx, waitCancel := context.WithTimeout(ctx, checkTimeout)
		defer waitCancel()
		fmt.Printf("Waiting for %s ...\n", cfg.BaseURL())
		if err := client.WaitReady(waitCtx, model, 0); err != nil {
			return err
		}
	}

	ids, err := client.Models(ctx)
	if err != nil {
		return fmt.Errorf("endpoint not reachable at %s: %w", cfg.BaseURL(), err)
	}
	display.Models(os.Stdout, ids, globalJSON)

	if !checkSmoke {
		return nil
	}
	reply, err := client.SmokeChat(ctx, model)
	if err != nil {
		return err
	}
	fmt.Printf("\nChat (%s): %s\n", model, reply)
	if em := cfg.Endpoint.EmbeddingModel; em != "" {
		dim, err := client.SmokeEmbedding(ctx, em)
		if err != nil {
			logger.Warn("embedding smoke test failed", zap.Error(err))
		} else {
			fmt.Printf("Embedding (%s): %d dimensions\n", em, dim)
		}
	}
	return nil
}
