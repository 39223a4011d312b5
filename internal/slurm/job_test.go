package slurm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveJob() *Job {
	return &Job{
		Name:        "rsstvlm-serve",
		Partition:   "gpu",
		Nodes:       1,
		CPUsPerTask: 16,
		GPUs:        4,
		Mem:         "512G",
		TimeLimit:   "48:00:00",
		Output:      "logs/serve-%j.out",
		WorkDir:     "/exports/yaoyhu/rsstvlm",
		Prolog:      []string{"source ~/.bashrc", "conda activate rsstvlm"},
		Command: []string{
			"vllm", "serve", "Qwen/Qwen3-VL-30B-A3B-Instruct",
			"--tensor-parallel-size", "4",
		},
	}
}

func TestRender_Directives(t *testing.T) {
	script, err := serveJob().Render()
	require.NoError(t, err)
	s := string(script)

	assert.True(t, strings.HasPrefix(s, "#!/bin/bash\n"))
	for _, want := range []string{
		"#SBATCH --job-name=rsstvlm-serve",
		"#SBATCH --partition=gpu",
		"#SBATCH --nodes=1",
		"#SBATCH --cpus-per-task=16",
		"#SBATCH --gres=gpu:4",
		"#SBATCH --mem=512G",
		"#SBATCH --time=48:00:00",
		"#SBATCH --output=logs/serve-%j.out",
	} {
		assert.Contains(t, s, want+"\n")
	}
	// no account configured, so no account directive
	assert.NotContains(t, s, "--account")
}

func TestRender_BannerAndPayloadOrder(t *testing.T) {
	script, err := serveJob().Render()
	require.NoError(t, err)
	s := string(script)

	banner := strings.Index(s, `Job:        ${SLURM_JOB_NAME}`)
	activate := strings.Index(s, "conda activate rsstvlm")
	chdir := strings.Index(s, "cd /exports/yaoyhu/rsstvlm")
	payload := strings.Index(s, "vllm serve Qwen/Qwen3-VL-30B-A3B-Instruct --tensor-parallel-size 4")
	end := strings.Index(s, `Finished:   $(date`)

	require.True(t, banner >= 0 && activate >= 0 && chdir >= 0 && payload >= 0 && end >= 0, "script: %s", s)
	assert.Less(t, banner, activate)
	assert.Less(t, activate, chdir)
	assert.Less(t, chdir, payload)
	assert.Less(t, payload, end)
	// payload exit code must be the script's exit code
	assert.Contains(t, s, "status=$?")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(s), "exit ${status}"))
}

func TestRender_NeverEmitsConflictMarkers(t *testing.T) {
	script, err := serveJob().Render()
	require.NoError(t, err)
	assert.NoError(t, ValidateScript(script))
}

func TestRender_QuotesArguments(t *testing.T) {
	j := serveJob()
	j.Command = []string{"python", "-m", "rsstvlm.rag.paper_download", "--wos-dir", "/data/wos exports"}
	script, err := j.Render()
	require.NoError(t, err)
	assert.Contains(t, string(script), "'/data/wos exports'")
}

func TestValidate_Errors(t *testing.T) {
	j := serveJob()
	j.Partition = ""
	assert.Error(t, j.Validate())

	j = serveJob()
	j.Command = nil
	assert.Error(t, j.Validate())

	j = serveJob()
	j.Mem = "lots"
	assert.Error(t, j.Validate())

	j = serveJob()
	j.TimeLimit = "two days"
	assert.Error(t, j.Validate())
}

func TestCheckTimeLimit_Forms(t *testing.T) {
	for _, ok := range []string{"30", "48:00:00", "2-12", "2-12:00:00", "0:30"} {
		assert.NoError(t, checkTimeLimit(ok), ok)
	}
	for _, bad := range []string{"", "-1:00", "1:2:3:4", "12h", "1-2-3"} {
		assert.Error(t, checkTimeLimit(bad), bad)
	}
}
