// Package slurm generates batch scripts and drives the cluster's sbatch,
// squeue, scancel and sacct commands. SLURM itself does all scheduling; this
// package only prepares and reads its inputs and outputs.
package slurm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// directivePrefix starts every SLURM directive line in a batch script.
const directivePrefix = "#SBATCH"

// Job describes one batch job to be rendered and submitted.
type Job struct {
	Name        string
	Partition   string
	Account     string
	Reservation string
	Nodes       int
	NTasks      int
	CPUsPerTask int
	GPUs        int    // rendered as --gres=gpu:N when > 0
	Mem         string // normalized with ParseMem before rendering
	TimeLimit   string
	Output      string // stdout path, %j expands to the job id
	Error       string // stderr path, empty merges into Output
	WorkDir     string

	// Prolog lines run after the banner and before Command: environment
	// activation, module loads, exports.
	Prolog []string

	// Command is the single payload argv. The scripts this replaces each ran
	// exactly one tool; that stays true here.
	Command []string
}

// scriptTemplate reproduces the shape of the lab's hand-written batch
// scripts: shebang, directives, start banner with job metadata, environment
// setup, cd, payload, end banner with the exit code preserved.
var scriptTemplate = template.Must(template.New("batch").Parse(`#!/bin/bash
{{- range .Directives}}
{{.}}
{{- end}}

echo "=================================================="
echo "Job:        ${SLURM_JOB_NAME} (${SLURM_JOB_ID})"
echo "Node list:  ${SLURM_JOB_NODELIST}"
echo "Started:    $(date '+%Y-%m-%d %H:%M:%S') on $(hostname)"
echo "GPUs:       ${CUDA_VISIBLE_DEVICES:-none}"
echo "=================================================="
{{range .Prolog}}
{{.}}
{{- end}}
{{- if .WorkDir}}

cd {{.WorkDir}}
{{- end}}

{{.CommandLine}}
status=$?

echo "=================================================="
echo "Finished:   $(date '+%Y-%m-%d %H:%M:%S') (exit ${status})"
echo "=================================================="
exit ${status}
`))

// Directives returns the #SBATCH lines for the job in a stable order.
func (j *Job) Directives() []string {
	var d []string
	add := func(flag, value string) {
		if value != "" {
			d = append(d, fmt.Sprintf("%s --%s=%s", directivePrefix, flag, value))
		}
	}
	add("job-name", j.Name)
	add("partition", j.Partition)
	add("account", j.Account)
	add("reservation", j.Reservation)
	if j.Nodes > 0 {
		add("nodes", fmt.Sprintf("%d", j.Nodes))
	}
	if j.NTasks > 0 {
		add("ntasks", fmt.Sprintf("%d", j.NTasks))
	}
	if j.CPUsPerTask > 0 {
		add("cpus-per-task", fmt.Sprintf("%d", j.CPUsPerTask))
	}
	if j.GPUs > 0 {
		add("gres", fmt.Sprintf("gpu:%d", j.GPUs))
	}
	add("mem", j.Mem)
	add("time", j.TimeLimit)
	add("output", j.Output)
	add("error", j.Error)
	return d
}

// CommandLine joins the payload argv, quoting arguments that need it.
func (j *Job) CommandLine() string {
	parts := make([]string, 0, len(j.Command))
	for _, a := range j.Command {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

// Validate checks the job before rendering.
func (j *Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("slurm: job name is required")
	}
	if j.Partition == "" {
		return fmt.Errorf("slurm: partition is required")
	}
	if len(j.Command) == 0 {
		return fmt.Errorf("slurm: job %q has no command", j.Name)
	}
	if j.Mem != "" {
		if _, err := ParseMem(j.Mem); err != nil {
			return err
		}
	}
	if j.TimeLimit != "" {
		if err := checkTimeLimit(j.TimeLimit); err != nil {
			return err
		}
	}
	return nil
}

// Render produces the complete batch script.
func (j *Job) Render() ([]byte, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, j); err != nil {
		return nil, fmt.Errorf("slurm: render %q: %w", j.Name, err)
	}
	return buf.Bytes(), nil
}

// shellQuote wraps an argument in single quotes when it contains characters
// the shell would interpret. Arguments with embedded ${...} references are
// left alone so SLURM environment expansion still works.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.Contains(s, "${") {
		return s
	}
	if !strings.ContainsAny(s, " \t\n\"'\\$&|;<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func checkTimeLimit(s string) error {
	// Accepted forms: M, H:M:S, D-H, D-H:M:S (what sbatch itself takes).
	rest := s
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		if i == 0 || !digitsOnly(rest[:i]) {
			return fmt.Errorf("slurm: invalid time limit %q", s)
		}
		rest = rest[i+1:]
	}
	parts := strings.Split(rest, ":")
	if len(parts) > 3 {
		return fmt.Errorf("slurm: invalid time limit %q", s)
	}
	for _, p := range parts {
		if !digitsOnly(p) {
			return fmt.Errorf("slurm: invalid time limit %q", s)
		}
	}
	return nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
