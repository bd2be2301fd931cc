package ipc

import (
	"bufio"
	"io"
	"os"
)

const defaultTailLimit = 200

// tailLines reads complete lines from the log file starting at offset. It
// returns the lines plus the offset of the first unread byte, so callers can
// poll for growth without re-reading what they already have. A partial final
// line is left for the next call. A negative offset requests the last limit
// lines of the file instead of a forward read.
func tailLines(path string, offset int64, limit int) ([]string, int64, error) {
	if limit <= 0 {
		limit = defaultTailLimit
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, offset, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, offset, err
	}
	if offset < 0 {
		return tailLast(f, limit)
	}
	if offset > info.Size() {
		// Truncated or rotated file; start over.
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, err
	}

	lines, read := readLines(bufio.NewReader(f), limit)
	return lines, offset + read, nil
}

// tailLast returns the last limit complete lines and the offset just past
// them, so follow-up calls pick up where the tail ended.
func tailLast(f *os.File, limit int) ([]string, int64, error) {
	reader := bufio.NewReader(f)
	var offset int64
	kept := make([]string, 0, limit)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		offset += int64(len(line))
		kept = append(kept, trimNewline(line))
		if len(kept) > limit {
			kept = kept[1:]
		}
	}
	return kept, offset, nil
}

func readLines(reader *bufio.Reader, limit int) ([]string, int64) {
	var read int64
	lines := make([]string, 0, limit)
	for len(lines) < limit {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		read += int64(len(line))
		lines = append(lines, trimNewline(line))
	}
	return lines, read
}

func trimNewline(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		return line[:n-1]
	}
	return line
}
