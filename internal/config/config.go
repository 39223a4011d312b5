// Package config loads launcher configuration: built-in defaults, then the
// YAML config file, then an optional .env file, then process environment.
// Later layers win.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cluster holds SLURM placement defaults shared by every generated job.
type Cluster struct {
	Partition   string `yaml:"partition"`
	Account     string `yaml:"account"`
	Reservation string `yaml:"reservation"`
	Nodes       int    `yaml:"nodes"`
	CPUsPerTask int    `yaml:"cpus_per_task"`
	Mem         string `yaml:"mem"`        // e.g. "512G"
	TimeLimit   string `yaml:"time_limit"` // e.g. "48:00:00"
	GPUsPerNode int    `yaml:"gpus_per_node"`
	GPUVRAMGB   float64 `yaml:"gpu_vram_gb"` // per-GPU memory of the partition's cards
	WorkDir     string `yaml:"workdir"`
	LogDir      string `yaml:"log_dir"`
	CondaEnv    string `yaml:"conda_env"`
	ActivateScript string `yaml:"activate_script"` // sourced before conda activate
}

// Binaries are the external commands the launcher shells out to. Overridable
// for clusters that front SLURM with wrappers.
type Binaries struct {
	Sbatch  string `yaml:"sbatch"`
	Squeue  string `yaml:"squeue"`
	Scancel string `yaml:"scancel"`
	Sacct   string `yaml:"sacct"`
	Python  string `yaml:"python"`
}

// Endpoint is where the served model is reachable once the job runs. APIBase,
// APIKey, Model and EmbeddingModel mirror the API_BASE / API_KEY / LLM /
// EMBEDDING_LLM environment variables the pipeline itself reads.
type Endpoint struct {
	APIBase        string `yaml:"api_base"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
}

// Config is the full launcher configuration.
type Config struct {
	Cluster  Cluster  `yaml:"cluster"`
	Binaries Binaries `yaml:"binaries"`
	Endpoint Endpoint `yaml:"endpoint"`
	LogFile  string   `yaml:"log_file"` // launcher's own log, empty disables
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cluster: Cluster{
			Partition:   "gpu",
			Nodes:       1,
			CPUsPerTask: 16,
			Mem:         "512G",
			TimeLimit:   "48:00:00",
			GPUsPerNode: 4,
			GPUVRAMGB:   80,
			LogDir:      "logs",
			CondaEnv:    "rsstvlm",
		},
		Binaries: Binaries{
			Sbatch:  "sbatch",
			Squeue:  "squeue",
			Scancel: "scancel",
			Sacct:   "sacct",
			Python:  "python",
		},
		Endpoint: Endpoint{
			Host: "localhost",
			Port: 8000,
		},
		LogFile: "rsstvlm.log",
	}
}

// DefaultPath returns the user config file path (config dir/rsstvlm/config.yaml).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rsstvlm", "config.yaml"), nil
}

// Load builds the configuration. path and envFile may be empty, in which case
// the default config path is tried (missing file is fine) and no .env is
// loaded beyond the working directory's, matching the pipeline's dotenv use.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := loadFile(cfg, path, explicit); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !mustExist {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// loadDotEnv loads variables from the given file, or ./.env when empty. A
// missing file is not an error so .env stays optional.
func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", path, err)
}

// applyEnv overlays the environment variables the original pipeline reads.
func applyEnv(cfg *Config) {
	if v := os.Getenv("API_BASE"); v != "" {
		cfg.Endpoint.APIBase = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Endpoint.APIKey = v
	}
	if v := os.Getenv("LLM"); v != "" {
		cfg.Endpoint.Model = v
	}
	if v := os.Getenv("EMBEDDING_LLM"); v != "" {
		cfg.Endpoint.EmbeddingModel = v
	}
	if v := os.Getenv("RSSTVLM_PARTITION"); v != "" {
		cfg.Cluster.Partition = v
	}
	if v := os.Getenv("RSSTVLM_ACCOUNT"); v != "" {
		cfg.Cluster.Account = v
	}
	if v := os.Getenv("RSSTVLM_LOG_DIR"); v != "" {
		cfg.Cluster.LogDir = v
	}
	if v := os.Getenv("RSSTVLM_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Endpoint.Port = p
		}
	}
}

// BaseURL returns the endpoint base URL for client calls, preferring an
// explicit api_base over host:port.
func (c *Config) BaseURL() string {
	if c.Endpoint.APIBase != "" {
		return c.Endpoint.APIBase
	}
	return fmt.Sprintf("http://%s:%d/v1", c.Endpoint.Host, c.Endpoint.Port)
}

// Validate rejects configurations that would produce unsubmittable jobs.
func (c *Config) Validate() error {
	if c.Cluster.Partition == "" {
		return fmt.Errorf("config: cluster.partition is required")
	}
	if c.Cluster.Nodes < 1 {
		return fmt.Errorf("config: cluster.nodes %d, must be >= 1", c.Cluster.Nodes)
	}
	if c.Cluster.GPUsPerNode < 0 {
		return fmt.Errorf("config: cluster.gpus_per_node %d, must be >= 0", c.Cluster.GPUsPerNode)
	}
	if c.Endpoint.Port < 1 || c.Endpoint.Port > 65535 {
		return fmt.Errorf("config: endpoint.port %d out of range", c.Endpoint.Port)
	}
	return nil
}
