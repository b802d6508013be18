package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const chunkSize = 16 * 1024

// Read returns the last maxLines lines of the file at path, oldest first.
// maxLines <= 0 returns the whole file. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}

	// Read backwards in chunks until enough newlines are buffered.
	var tail []byte
	offset := info.Size()
	for offset > 0 {
		if maxLines > 0 && bytes.Count(tail, []byte{'\n'}) > maxLines {
			break
		}
		n := min(int64(chunkSize), offset)
		offset -= n
		chunk := make([]byte, n)
		if _, err := file.ReadAt(chunk, offset); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read log: %w", err)
		}
		tail = append(chunk, tail...)
	}

	text := strings.TrimRight(string(tail), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}

// StripPrefix removes a standard-logger prefix and date from line, leaving
// the time and message: "skipper 2026/01/02 15:04:05 msg" becomes
// "15:04:05 msg". Lines in other formats are returned trimmed.
func StripPrefix(line, prefix string) string {
	rest := strings.TrimSpace(line)
	if prefix != "" {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, prefix))
	}
	date, after, ok := strings.Cut(rest, " ")
	if ok && len(date) == len("2006/01/02") && date[4] == '/' && date[7] == '/' {
		return after
	}
	return rest
}
