// Package hardware inspects the node the launcher runs on: RAM, CPU, NVIDIA
// GPUs, and the SLURM job environment when invoked inside an allocation.
package hardware

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const gb = 1024 * 1024 * 1024

// GpuInfo holds one detected GPU.
type GpuInfo struct {
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	VRAMGB  float64 `json:"vram_gb"`
	UsedGB  float64 `json:"used_gb"`
	Driver  string  `json:"driver,omitempty"`
}

// SlurmEnv is the job metadata SLURM exports inside an allocation; the same
// values the old batch scripts echoed into their banners.
type SlurmEnv struct {
	JobID       string `json:"job_id,omitempty"`
	JobName     string `json:"job_name,omitempty"`
	NodeList    string `json:"node_list,omitempty"`
	Partition   string `json:"partition,omitempty"`
	VisibleGPUs string `json:"cuda_visible_devices,omitempty"`
}

// InJob reports whether the process runs inside a SLURM allocation.
func (s *SlurmEnv) InJob() bool { return s.JobID != "" }

// NodeSpecs holds everything detected on the current node.
type NodeSpecs struct {
	Hostname       string    `json:"hostname"`
	TotalRAMGB     float64   `json:"total_ram_gb"`
	AvailableRAMGB float64   `json:"available_ram_gb"`
	TotalCPUCores  int       `json:"cpu_cores"`
	CPUName        string    `json:"cpu_name"`
	Gpus           []GpuInfo `json:"gpus"`
	Slurm          SlurmEnv  `json:"slurm"`
}

// HasGPU reports whether any GPU was detected.
func (n *NodeSpecs) HasGPU() bool { return len(n.Gpus) > 0 }

// TotalVRAMGB sums VRAM over all detected GPUs.
func (n *NodeSpecs) TotalVRAMGB() float64 {
	var total float64
	for _, g := range n.Gpus {
		total += g.VRAMGB
	}
	return total
}

// Detect inspects the current node.
func Detect() (*NodeSpecs, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("mem: %w", err)
	}

	infos, _ := cpu.Info()
	cpuName := "Unknown CPU"
	if len(infos) > 0 {
		cpuName = infos[0].ModelName
		if cpuName == "" {
			cpuName = infos[0].VendorID
		}
	}

	hostname, _ := os.Hostname()
	specs := &NodeSpecs{
		Hostname:       hostname,
		TotalRAMGB:     float64(v.Total) / float64(gb),
		AvailableRAMGB: float64(v.Available) / float64(gb),
		TotalCPUCores:  runtime.NumCPU(),
		CPUName:        cpuName,
		Slurm:          ReadSlurmEnv(),
	}
	specs.Gpus, _ = detectNvidiaGPUs()
	return specs, nil
}

// ReadSlurmEnv captures the SLURM job variables from the environment.
func ReadSlurmEnv() SlurmEnv {
	return SlurmEnv{
		JobID:       os.Getenv("SLURM_JOB_ID"),
		JobName:     os.Getenv("SLURM_JOB_NAME"),
		NodeList:    os.Getenv("SLURM_JOB_NODELIST"),
		Partition:   os.Getenv("SLURM_JOB_PARTITION"),
		VisibleGPUs: os.Getenv("CUDA_VISIBLE_DEVICES"),
	}
}
