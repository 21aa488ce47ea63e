package logging

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Line is one record read back from the log file.
type Line struct {
	Raw     string
	Level   slog.Level
	Message string
}

// Tail returns at most maxLines records from the end of the file at path.
// A missing file yields no lines.
func Tail(path string, maxLines int) ([]Line, error) {
	if maxLines <= 0 || strings.TrimSpace(path) == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		ring[idx] = text
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]Line, count)
	start := 0
	if count == maxLines {
		start = idx
	}
	for i := 0; i < count; i++ {
		lines[i] = ParseLine(ring[(start+i)%maxLines])
	}
	return lines, nil
}

// ParseLine pulls the level and msg fields out of a slog text record.
// Lines in another format keep their raw text as the message at info.
func ParseLine(raw string) Line {
	line := Line{Raw: raw, Level: slog.LevelInfo, Message: raw}
	if lvl, ok := field(raw, "level"); ok {
		var level slog.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			line.Level = level
		}
	}
	if msg, ok := field(raw, "msg"); ok {
		line.Message = msg
	}
	return line
}

// field finds key=value in a text record, honoring quoted values.
func field(raw, key string) (string, bool) {
	prefix := key + "="
	pos := 0
	for {
		i := strings.Index(raw[pos:], prefix)
		if i < 0 {
			return "", false
		}
		i += pos
		if i == 0 || raw[i-1] == ' ' {
			rest := raw[i+len(prefix):]
			if strings.HasPrefix(rest, `"`) {
				return unquote(rest), true
			}
			if end := strings.IndexByte(rest, ' '); end >= 0 {
				return rest[:end], true
			}
			return rest, true
		}
		pos = i + len(prefix)
	}
}

func unquote(s string) string {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String()
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
