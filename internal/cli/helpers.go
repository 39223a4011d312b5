package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/yaoyhu/rsstvlm/internal/plan"
	"github.com/yaoyhu/rsstvlm/internal/slurm"
)

// jobPrefix tags every job this launcher submits so status/watch can pick
// them out of a shared queue.
const jobPrefix = "rsstvlm-"

func newSlurmClient() *slurm.Client {
	return slurm.NewClient(cfg.Binaries.Sbatch, cfg.Binaries.Squeue,
		cfg.Binaries.Scancel, cfg.Binaries.Sacct, logger)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runID returns a short unique suffix for job names and log files.
func runID() string {
	return uuid.NewString()[:8]
}

// jobName builds "rsstvlm-<kind>-<id>".
func jobName(kind, id string) string {
	return jobPrefix + kind + "-" + id
}

// outputPath is the sbatch --output path for a job; %j expands to the job ID
// at schedule time.
func outputPath(kind, id string) string {
	return filepath.Join(cfg.Cluster.LogDir, fmt.Sprintf("%s-%s-%%j.out", kind, id))
}

// resolveOutputPath substitutes the assigned job ID into the %j pattern.
func resolveOutputPath(pattern string, jobID int) string {
	return strings.ReplaceAll(pattern, "%j", fmt.Sprintf("%d", jobID))
}

// prolog returns the environment-activation lines every job starts with.
func prolog() []string {
	var lines []string
	if s := cfg.Cluster.ActivateScript; s != "" {
		lines = append(lines, "source "+s)
	}
	if e := cfg.Cluster.CondaEnv; e != "" {
		lines = append(lines, "conda activate "+e)
	}
	return lines
}

// nodeShape is the GPU shape of the configured partition.
func nodeShape() plan.NodeShape {
	return plan.NodeShape{GPUs: cfg.Cluster.GPUsPerNode, VRAMPerGB: cfg.Cluster.GPUVRAMGB}
}

// baseJob seeds a Job with the cluster defaults; callers adjust from there.
func baseJob(kind, id string) *slurm.Job {
	return &slurm.Job{
		Name:        jobName(kind, id),
		Partition:   cfg.Cluster.Partition,
		Account:     cfg.Cluster.Account,
		Reservation: cfg.Cluster.Reservation,
		Nodes:       cfg.Cluster.Nodes,
		NTasks:      1,
		CPUsPerTask: cfg.Cluster.CPUsPerTask,
		Mem:         cfg.Cluster.Mem,
		TimeLimit:   cfg.Cluster.TimeLimit,
		Output:      outputPath(kind, id),
		WorkDir:     cfg.Cluster.WorkDir,
		Prolog:      prolog(),
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	line := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return line == "y" || line == "yes"
}
