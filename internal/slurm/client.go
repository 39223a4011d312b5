package slurm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Client shells out to the cluster's SLURM commands. Binary paths come from
// configuration so wrapper installations keep working.
type Client struct {
	Sbatch  string
	Squeue  string
	Scancel string
	Sacct   string

	log *zap.Logger

	// runner and submitRunner are swapped in tests to avoid needing a
	// real cluster.
	runner       func(ctx context.Context, name string, args ...string) ([]byte, error)
	submitRunner func(ctx context.Context, script []byte) ([]byte, error)
}

// NewClient builds a Client. Empty binary paths fall back to the plain
// command names resolved via PATH.
func NewClient(sbatch, squeue, scancel, sacct string, log *zap.Logger) *Client {
	c := &Client{
		Sbatch:  orDefault(sbatch, "sbatch"),
		Squeue:  orDefault(squeue, "squeue"),
		Scancel: orDefault(scancel, "scancel"),
		Sacct:   orDefault(sacct, "sacct"),
		log:     log,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.runner = c.run
	c.submitRunner = c.runSbatch
	return c
}

func (c *Client) runSbatch(ctx context.Context, script []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Sbatch)
	cmd.Stdin = strings.NewReader(string(script))
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("sbatch: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("sbatch: %w", err)
	}
	return out, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (c *Client) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%s: %s", name, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Submit renders the job, validates the result, and feeds it to sbatch on
// stdin. Returns the assigned job ID.
func (c *Client) Submit(ctx context.Context, job *Job) (int, error) {
	script, err := job.Render()
	if err != nil {
		return 0, err
	}
	return c.SubmitScript(ctx, script)
}

// SubmitScript submits a ready batch script. User-supplied scripts go
// through the same validation as generated ones.
func (c *Client) SubmitScript(ctx context.Context, script []byte) (int, error) {
	if err := ValidateScript(script); err != nil {
		return 0, err
	}
	out, err := c.submitRunner(ctx, script)
	if err != nil {
		return 0, err
	}
	id, err := ParseSubmitOutput(out)
	if err != nil {
		return 0, err
	}
	c.log.Info("submitted batch job", zap.Int("job_id", id))
	return id, nil
}

// Queue lists the calling user's jobs, optionally filtered to names with the
// given prefix.
func (c *Client) Queue(ctx context.Context, namePrefix string) ([]JobInfo, error) {
	args := []string{"--noheader", "-o", squeueFormat}
	if u := currentUser(); u != "" {
		args = append(args, "-u", u)
	}
	out, err := c.runner(ctx, c.Squeue, args...)
	if err != nil {
		return nil, err
	}
	jobs, err := ParseSqueue(out)
	if err != nil {
		return nil, err
	}
	return filterByName(jobs, namePrefix), nil
}

// Accounting returns sacct rows for specific job IDs, or the user's recent
// jobs when ids is empty.
func (c *Client) Accounting(ctx context.Context, ids []int) ([]JobInfo, error) {
	args := []string{"--parsable2", "--noheader", "--format=" + sacctFormat}
	if len(ids) > 0 {
		strs := make([]string, len(ids))
		for i, id := range ids {
			strs[i] = strconv.Itoa(id)
		}
		args = append(args, "-j", strings.Join(strs, ","))
	}
	out, err := c.runner(ctx, c.Sacct, args...)
	if err != nil {
		return nil, err
	}
	return ParseSacct(out)
}

// Cancel cancels the given jobs.
func (c *Client) Cancel(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]string, len(ids))
	for i, id := range ids {
		args[i] = strconv.Itoa(id)
	}
	if _, err := c.runner(ctx, c.Scancel, args...); err != nil {
		return err
	}
	c.log.Info("cancelled jobs", zap.Ints("job_ids", ids))
	return nil
}

func filterByName(jobs []JobInfo, prefix string) []JobInfo {
	if prefix == "" {
		return jobs
	}
	out := jobs[:0:0]
	for _, j := range jobs {
		if strings.HasPrefix(j.Name, prefix) {
			out = append(out, j)
		}
	}
	return out
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
