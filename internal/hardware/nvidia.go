package hardware

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// nvidiaSmiOutput is swapped in tests; the default runs nvidia-smi.
var nvidiaSmiOutput = func() ([]byte, error) {
	cmd := exec.Command("nvidia-smi",
		"--query-gpu=index,name,memory.total,memory.used,driver_version",
		"--format=csv,noheader,nounits")
	return cmd.Output()
}

// detectNvidiaGPUs lists the node's NVIDIA GPUs. A missing nvidia-smi is not
// an error: login nodes have no GPUs.
func detectNvidiaGPUs() ([]GpuInfo, error) {
	out, err := nvidiaSmiOutput()
	if err != nil {
		return nil, nil
	}
	return parseNvidiaSmi(out)
}

func parseNvidiaSmi(out []byte) ([]GpuInfo, error) {
	var gpus []GpuInfo
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 4 {
			return nil, fmt.Errorf("hardware: bad nvidia-smi line %q", line)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		var g GpuInfo
		if _, err := fmt.Sscanf(parts[0], "%d", &g.Index); err != nil {
			return nil, fmt.Errorf("hardware: bad nvidia-smi line %q", line)
		}
		g.Name = parts[1]
		var totalMB, usedMB float64
		if _, err := fmt.Sscanf(parts[2], "%f", &totalMB); err != nil {
			return nil, fmt.Errorf("hardware: bad nvidia-smi line %q", line)
		}
		fmt.Sscanf(parts[3], "%f", &usedMB)
		if len(parts) > 4 {
			g.Driver = parts[4]
		}
		g.VRAMGB = totalMB / 1024
		g.UsedGB = usedMB / 1024
		gpus = append(gpus, g)
	}
	return gpus, nil
}
