package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap/zapcore"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines. maxLines <= 0 returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if count < maxLines {
		return append([]string(nil), ring[:count]...), nil
	}
	lines := make([]string, 0, count)
	lines = append(lines, ring[next:]...)
	return append(lines, ring[:next]...), nil
}

// Entry is one decoded JSON log line.
type Entry struct {
	Time    time.Time
	Level   zapcore.Level
	Logger  string
	Message string
	// Fields holds every other key, rendered as text.
	Fields map[string]string
	// Raw is the undecoded line.
	Raw string
}

var reservedKeys = map[string]bool{
	"timestamp": true, "level": true, "logger": true, "message": true, "caller": true, "stacktrace": true,
}

// Parse decodes a JSON log line. Lines that are not JSON objects come back
// with ok false and Raw set.
func Parse(line string) (Entry, bool) {
	e := Entry{Raw: line, Level: zapcore.InfoLevel}
	var obj map[string]any
	if err := sonic.UnmarshalString(line, &obj); err != nil || obj == nil {
		return e, false
	}

	if ts, ok := obj["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Time = t
		} else if t, err := time.Parse("2006-01-02T15:04:05.000Z0700", ts); err == nil {
			e.Time = t
		}
	}
	if lvl, ok := obj["level"].(string); ok {
		_ = e.Level.UnmarshalText([]byte(lvl))
	}
	e.Logger, _ = obj["logger"].(string)
	e.Message, _ = obj["message"].(string)

	for k, v := range obj {
		if reservedKeys[k] {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string]string)
		}
		switch val := v.(type) {
		case string:
			e.Fields[k] = val
		default:
			text, err := sonic.MarshalString(val)
			if err != nil {
				text = fmt.Sprint(val)
			}
			e.Fields[k] = text
		}
	}
	return e, true
}

// Filter keeps lines at or above min. Lines that do not parse are kept.
func Filter(lines []string, min zapcore.Level) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, ok := Parse(line)
		if ok && e.Level < min {
			continue
		}
		out = append(out, e)
	}
	return out
}
