package slurm

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// squeueFormat is the -o format string used for queue listings. Pipe
// separated so names with spaces survive.
const squeueFormat = "%i|%j|%P|%T|%M|%D|%R"

// sacctFormat lists the accounting fields requested with --parsable2.
const sacctFormat = "JobID,JobName,Partition,State,ElapsedRaw,ExitCode,NodeList"

// JobInfo is one row of queue or accounting state.
type JobInfo struct {
	ID        int    `json:"id"`
	Step      string `json:"step,omitempty"` // "batch", "extern", array suffix; empty for the main record
	Name      string `json:"name"`
	Partition string `json:"partition"`
	State     string `json:"state"` // normalized: CANCELLED, RUNNING, ...
	Elapsed   string `json:"elapsed,omitempty"`
	ElapsedSec int64 `json:"elapsed_sec,omitempty"`
	Nodes     int    `json:"nodes,omitempty"`
	NodeList  string `json:"node_list,omitempty"`
	Reason    string `json:"reason,omitempty"`
	ExitCode  int    `json:"exit_code,omitempty"`
}

// Running reports whether the job is still in flight (pending counts).
func (j *JobInfo) Running() bool {
	switch j.State {
	case "RUNNING", "PENDING", "CONFIGURING", "COMPLETING", "SUSPENDED":
		return true
	}
	return false
}

// normalizeState strips the trailing detail sacct appends, e.g.
// "CANCELLED by 4211" becomes "CANCELLED".
func normalizeState(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return strings.ToUpper(s)
}

// ParseSubmitOutput extracts the job ID from sbatch stdout
// ("Submitted batch job 123456").
func ParseSubmitOutput(out []byte) (int, error) {
	fields := strings.Fields(string(out))
	if len(fields) >= 4 && fields[0] == "Submitted" && fields[1] == "batch" && fields[2] == "job" {
		id, err := strconv.Atoi(fields[3])
		if err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, fmt.Errorf("slurm: unexpected sbatch output %q", strings.TrimSpace(string(out)))
}

// ParseSqueue parses `squeue --noheader -o squeueFormat` output.
func ParseSqueue(out []byte) ([]JobInfo, error) {
	var jobs []JobInfo
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f := strings.Split(line, "|")
		if len(f) != 7 {
			return nil, fmt.Errorf("slurm: bad squeue line %q", line)
		}
		id, step := splitJobID(f[0])
		nodes, _ := strconv.Atoi(f[5])
		jobs = append(jobs, JobInfo{
			ID:        id,
			Step:      step,
			Name:      f[1],
			Partition: f[2],
			State:     normalizeState(f[3]),
			Elapsed:   f[4],
			Nodes:     nodes,
			Reason:    f[6],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("slurm: scan squeue output: %w", err)
	}
	return jobs, nil
}

// ParseSacct parses `sacct --parsable2 --noheader` output for sacctFormat.
// Step records (batch, extern) are folded away; callers get one row per job.
func ParseSacct(out []byte) ([]JobInfo, error) {
	var jobs []JobInfo
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f := strings.Split(line, "|")
		if len(f) != 7 {
			return nil, fmt.Errorf("slurm: bad sacct line %q", line)
		}
		id, step := splitJobID(f[0])
		if step != "" {
			continue
		}
		elapsed, _ := strconv.ParseInt(f[4], 10, 64)
		exit := parseExitCode(f[5])
		jobs = append(jobs, JobInfo{
			ID:         id,
			Name:       f[1],
			Partition:  f[2],
			State:      normalizeState(f[3]),
			ElapsedSec: elapsed,
			ExitCode:   exit,
			NodeList:   f[6],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("slurm: scan sacct output: %w", err)
	}
	return jobs, nil
}

// splitJobID separates "123.batch" or "123_4" into the numeric job ID and
// the step/array remainder.
func splitJobID(raw string) (int, string) {
	id := raw
	step := ""
	if i := strings.IndexAny(raw, "._"); i >= 0 {
		id, step = raw[:i], raw[i+1:]
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, raw
	}
	return n, step
}

// parseExitCode reads the code part of sacct's "code:signal" field.
func parseExitCode(s string) int {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	n, _ := strconv.Atoi(s)
	return n
}

// conflictMarkers are the version-control markers that once shipped inside a
// hand-edited batch script and broke a run. Scripts read from disk are
// checked before submission.
var conflictMarkers = []string{"<<<<<<<", "=======", ">>>>>>>"}

// ValidateScript rejects scripts that are empty, not shell scripts, or carry
// unresolved merge-conflict markers.
func ValidateScript(script []byte) error {
	if len(bytes.TrimSpace(script)) == 0 {
		return fmt.Errorf("slurm: script is empty")
	}
	if !bytes.HasPrefix(script, []byte("#!")) {
		return fmt.Errorf("slurm: script missing interpreter line")
	}
	lineNo := 0
	sc := bufio.NewScanner(bytes.NewReader(script))
	for sc.Scan() {
		lineNo++
		for _, m := range conflictMarkers {
			if strings.HasPrefix(sc.Text(), m) {
				return fmt.Errorf("slurm: unresolved merge conflict marker at line %d", lineNo)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("slurm: scan script: %w", err)
	}
	return nil
}
