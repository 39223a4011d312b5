package slurm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmitOutput(t *testing.T) {
	id, err := ParseSubmitOutput([]byte("Submitted batch job 123456\n"))
	require.NoError(t, err)
	assert.Equal(t, 123456, id)

	_, err = ParseSubmitOutput([]byte("sbatch: error: invalid partition\n"))
	assert.Error(t, err)

	_, err = ParseSubmitOutput([]byte(""))
	assert.Error(t, err)
}

func TestParseSqueue(t *testing.T) {
	out := []byte(`123|rsstvlm-serve-a1b2|gpu|RUNNING|1:02:03|1|gpu-node-12
124|rsstvlm-papers-c3d4|cpu|PENDING|0:00|1|(Priority)
`)
	jobs, err := ParseSqueue(out)
	require.NoError(t, err)
	want := []JobInfo{
		{ID: 123, Name: "rsstvlm-serve-a1b2", Partition: "gpu", State: "RUNNING", Elapsed: "1:02:03", Nodes: 1, Reason: "gpu-node-12"},
		{ID: 124, Name: "rsstvlm-papers-c3d4", Partition: "cpu", State: "PENDING", Elapsed: "0:00", Nodes: 1, Reason: "(Priority)"},
	}
	if diff := cmp.Diff(want, jobs); diff != "" {
		t.Errorf("ParseSqueue mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, jobs[0].Running())
	assert.True(t, jobs[1].Running())
}

func TestParseSqueue_BadLine(t *testing.T) {
	_, err := ParseSqueue([]byte("garbage line\n"))
	assert.Error(t, err)
}

func TestParseSacct_FoldsStepsAndNormalizesState(t *testing.T) {
	out := []byte(`123|rsstvlm-serve-a1b2|gpu|CANCELLED by 4211|3600|0:0|gpu-node-12
123.batch|batch|gpu|CANCELLED|3600|0:15|gpu-node-12
123.extern|extern|gpu|COMPLETED|3600|0:0|gpu-node-12
125|rsstvlm-graphrag-e5f6|gpu|FAILED|120|1:0|gpu-node-03
`)
	jobs, err := ParseSacct(out)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, 123, jobs[0].ID)
	assert.Equal(t, "CANCELLED", jobs[0].State)
	assert.Equal(t, int64(3600), jobs[0].ElapsedSec)
	assert.False(t, jobs[0].Running())

	assert.Equal(t, "FAILED", jobs[1].State)
	assert.Equal(t, 1, jobs[1].ExitCode)
	assert.Equal(t, "gpu-node-03", jobs[1].NodeList)
}

func TestSplitJobID(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		id   int
		step string
	}{
		{"123", 123, ""},
		{"123.batch", 123, "batch"},
		{"123_4", 123, "4"},
		{"weird", 0, "weird"},
	} {
		id, step := splitJobID(tc.raw)
		assert.Equal(t, tc.id, id, tc.raw)
		assert.Equal(t, tc.step, step, tc.raw)
	}
}

func TestValidateScript(t *testing.T) {
	good := []byte("#!/bin/bash\n#SBATCH --partition=gpu\necho hi\n")
	assert.NoError(t, ValidateScript(good))

	assert.Error(t, ValidateScript(nil))
	assert.Error(t, ValidateScript([]byte("   \n")))
	assert.Error(t, ValidateScript([]byte("echo no shebang\n")))

	conflicted := []byte("#!/bin/bash\n<<<<<<< HEAD\nvllm serve a\n=======\nvllm serve b\n>>>>>>> main\n")
	err := ValidateScript(conflicted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge conflict")
}
