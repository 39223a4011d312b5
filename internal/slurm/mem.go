package slurm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var memPattern = regexp.MustCompile(`^([0-9]+)([KMGT]?)$`)

// ParseMem converts a SLURM memory request ("64G", "512000M", "1T", bare
// megabytes) into megabytes. Default unit without a suffix is megabytes,
// matching sbatch --mem.
func ParseMem(req string) (int64, error) {
	m := memPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(req)))
	if m == nil {
		return 0, fmt.Errorf("slurm: invalid mem request %q", req)
	}
	base, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("slurm: invalid mem request %q", req)
	}
	switch m[2] {
	case "K":
		return base / 1024, nil
	case "", "M":
		return base, nil
	case "G":
		return base * 1024, nil
	case "T":
		return base * 1024 * 1024, nil
	}
	return 0, fmt.Errorf("slurm: invalid mem request %q", req)
}

// FormatMemGB renders a gigabyte count the way the scripts wrote it.
func FormatMemGB(gb int) string {
	return fmt.Sprintf("%dG", gb)
}
