package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_SpansChunks(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "big.log")

	// Lines long enough that the last few cross a chunk boundary.
	var content strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&content, "%04d %s\n", i, strings.Repeat("x", 100))
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Read(logPath, 200)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 200 {
		t.Fatalf("Read() returned %d lines, want 200", len(got))
	}
	if !strings.HasPrefix(got[0], "0300 ") || !strings.HasPrefix(got[199], "0499 ") {
		t.Fatalf("Read() window = %q .. %q, want 0300 .. 0499", got[0][:4], got[199][:4])
	}
}

func TestRead_MissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	got, err := Read(filepath.Join(dir, "missing.log"), 5)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}

	empty := filepath.Join(dir, "empty.log")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err = Read(empty, 5)
	if err != nil || got != nil {
		t.Fatalf("Read(empty) = %v, %v; want nil, nil", got, err)
	}
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		in, prefix, want string
	}{
		{"skipper 2026/10/18 12:00:01 status poll failed", "skipper", "12:00:01 status poll failed"},
		{"2026/10/18 12:00:01 no prefix", "skipper", "12:00:01 no prefix"},
		{"  free text  ", "skipper", "free text"},
		{"skipper not-a-date message", "skipper", "not-a-date message"},
	}
	for _, tt := range tests {
		if got := StripPrefix(tt.in, tt.prefix); got != tt.want {
			t.Errorf("StripPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
