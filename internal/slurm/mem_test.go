package slurm

import (
	"testing"
)

func TestParseMem(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"512G", 512 * 1024},
		{"64g", 64 * 1024},
		{"512000M", 512000},
		{"512000", 512000},
		{"1T", 1024 * 1024},
		{"2048K", 2},
	}
	for _, tc := range cases {
		got, err := ParseMem(tc.in)
		if err != nil {
			t.Errorf("ParseMem(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMem(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseMem_Invalid(t *testing.T) {
	for _, in := range []string{"", "lots", "12X", "G", "-5G"} {
		if _, err := ParseMem(in); err == nil {
			t.Errorf("ParseMem(%q) should fail", in)
		}
	}
}

func TestFormatMemGB(t *testing.T) {
	if got := FormatMemGB(512); got != "512G" {
		t.Errorf("FormatMemGB(512) = %q", got)
	}
}
