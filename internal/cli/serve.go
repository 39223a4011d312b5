package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaoyhu/rsstvlm/internal/endpoint"
	"github.com/yaoyhu/rsstvlm/internal/logtail"
	"github.com/yaoyhu/rsstvlm/internal/models"
	"github.com/yaoyhu/rsstvlm/internal/plan"
	"github.com/yaoyhu/rsstvlm/internal/slurm"
	"github.com/yaoyhu/rsstvlm/internal/vllm"
)

var (
	serveTensorParallel int
	serveGPUMemUtil     float64
	serveMaxModelLen    int
	serveMaxNumSeqs     int
	servePort           int
	serveDType          string
	serveGPUs           int
	serveMem            string
	serveTime           string
	servePartition      string
	serveDryRun         bool
	serveFollow         bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [preset]",
	Short: "Submit a vllm serving job for a model preset",
	Long: "Builds the batch script that starts `vllm serve` for the given preset " +
		"(default: the Qwen3-VL instruct model), submits it with sbatch, and prints the " +
		"job ID. Use --dry-run to inspect the script instead of submitting.",
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Submit the embedding-server job",
	Long:  "Shorthand for `serve qwen3-embedding-8b`: starts the embedding model that backs the knowledge-graph vector store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return launchServe(models.Qwen3Embedding8B.ID)
	},
}

func init() {
	for _, c := range []*cobra.Command{serveCmd, embedCmd} {
		c.Flags().IntVar(&serveTensorParallel, "tensor-parallel", 0, "Tensor parallel degree (0 = preset default)")
		c.Flags().Float64Var(&serveGPUMemUtil, "gpu-memory-utilization", 0, "GPU memory fraction for the server (0 = preset default)")
		c.Flags().IntVar(&serveMaxModelLen, "max-model-len", 0, "Max sequence length (0 = preset default)")
		c.Flags().IntVar(&serveMaxNumSeqs, "max-num-seqs", 0, "Max concurrent sequences (0 = preset default)")
		c.Flags().IntVar(&servePort, "port", 0, "Server port (0 = configured endpoint port)")
		c.Flags().StringVar(&serveDType, "dtype", "", "Model dtype override")
		c.Flags().IntVar(&serveGPUs, "gpus", 0, "GPUs to request (0 = tensor parallel degree)")
		c.Flags().StringVar(&serveMem, "mem", "", "Memory request override, e.g. 512G")
		c.Flags().StringVar(&serveTime, "time", "", "Time limit override, e.g. 48:00:00")
		c.Flags().StringVar(&servePartition, "partition", "", "Partition override")
		c.Flags().BoolVar(&serveDryRun, "dry-run", false, "Print the batch script without submitting")
		c.Flags().BoolVar(&serveFollow, "follow", false, "After submitting, follow the job's output")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	preset := models.Qwen3VL30BInstruct.ID
	if len(args) == 1 {
		preset = args[0]
	}
	return launchServe(preset)
}

func launchServe(preset string) error {
	m, err := models.Lookup(preset)
	if err != nil {
		return err
	}

	sc := vllm.FromPreset(m)
	sc.Host = "0.0.0.0"
	sc.Port = cfg.Endpoint.Port
	sc.APIKey = cfg.Endpoint.APIKey
	if serveTensorParallel > 0 {
		sc.TensorParallel = serveTensorParallel
	} else if sc.TensorParallel == 0 {
		sc.TensorParallel = plan.Analyze(m, nodeShape(), serveGPUMemUtil).TensorParallel
	}
	if serveGPUMemUtil > 0 {
		sc.GPUMemoryUtil = serveGPUMemUtil
	}
	if serveMaxModelLen > 0 {
		sc.MaxModelLen = serveMaxModelLen
	}
	if serveMaxNumSeqs > 0 {
		sc.MaxNumSeqs = serveMaxNumSeqs
	}
	if servePort > 0 {
		sc.Port = servePort
	}
	if serveDType != "" {
		sc.DType = serveDType
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	p := plan.Analyze(m, nodeShape(), sc.GPUMemoryUtil)
	if p.Fit == plan.FitTooTight {
		logger.Warn("model likely does not fit the configured partition",
			zap.String("preset", m.ID),
			zap.Float64("required_gb", p.MemoryRequiredGB),
			zap.Float64("available_gb", p.MemoryAvailableGB))
	}

	id := runID()
	job := baseJob("serve", id)
	job.GPUs = sc.TensorParallel
	if serveGPUs > 0 {
		job.GPUs = serveGPUs
	}
	applyPlacementOverrides(job)
	job.Command = sc.Args()

	if serveDryRun {
		return printScript(job)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := newSlurmClient()
	jobID, err := client.Submit(ctx, job)
	if err != nil {
		return err
	}
	logger.Info("serving job submitted",
		zap.String("preset", m.ID), zap.Int("job_id", jobID),
		zap.Int("tensor_parallel", sc.TensorParallel))
	fmt.Printf("Submitted batch job %d (%s)\n", jobID, job.Name)

	if serveFollow {
		out := resolveOutputPath(job.Output, jobID)
		fmt.Printf("Following %s (Ctrl-C to stop)\n", out)
		return followJobOutput(ctx, out, m.ID)
	}
	return nil
}

// followJobOutput streams the job log and reports endpoint readiness in the
// background once the server comes up.
func followJobOutput(ctx context.Context, path, servedModel string) error {
	go func() {
		ep := endpoint.New(cfg.BaseURL(), cfg.Endpoint.APIKey)
		if err := ep.WaitReady(ctx, servedModel, 10*time.Second); err == nil {
			fmt.Fprintf(os.Stderr, "\n%s is ready at %s\n", servedModel, cfg.BaseURL())
		}
	}()
	err := logtail.Follow(ctx, path, os.Stdout)
	if ctx.Err() != nil {
		return nil // user interrupt, not a failure
	}
	return err
}

func applyPlacementOverrides(job *slurm.Job) {
	if serveMem != "" {
		job.Mem = serveMem
	}
	if serveTime != "" {
		job.TimeLimit = serveTime
	}
	if servePartition != "" {
		job.Partition = servePartition
	}
}

func printScript(job *slurm.Job) error {
	script, err := job.Render()
	if err != nil {
		return err
	}
	fmt.Print(string(script))
	return nil
}
