// Package scan reads a log file forward from a byte offset and collects
// pattern matches, optionally with surrounding context lines.
package scan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrPattern marks a pattern that does not compile. It is returned before any
// file I/O happens.
var ErrPattern = errors.New("invalid pattern")

// Window is the number of context lines collected around each match. A zero
// count on either side collapses that side to the matching line.
type Window struct {
	Up     int
	Bottom int
}

// Group is one reported match event: the matching line plus any context
// lines, in original file order.
type Group struct {
	Lines []string
}

// Result is the output of one scan.
type Result struct {
	Groups []Group
	// TotalMatches counts matching lines. It can exceed len(Groups) only in
	// renderings that merge groups; this engine never merges, so the two stay
	// equal, but the count is tracked independently on purpose.
	TotalMatches int
	// NewOffset is the stream position reached after reading to end of file.
	// The caller persists it as the next scan's start offset.
	NewOffset int64
}

// Scan opens the log file, seeks to offset, and matches every remaining line
// against pattern case-insensitively. With a nil window each matching line
// becomes its own single-line Group. With a window, all remaining lines are
// buffered and every match gets an independent Group of up to window.Up lines
// before and window.Bottom lines after it, clamped to the read region.
// Nearby matches produce overlapping Groups that share lines; they are not
// merged or deduplicated.
func Scan(path string, offset int64, pattern string, window *Window) (Result, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPattern, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return Result{}, fmt.Errorf("seek to %d: %w", offset, err)
		}
	}

	if window == nil {
		return scanPlain(f, offset, re)
	}
	return scanContext(f, offset, re, *window)
}

func scanPlain(f *os.File, offset int64, re *regexp.Regexp) (Result, error) {
	res := Result{NewOffset: offset}
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			res.NewOffset += int64(len(line))
			if trimmed := chomp(line); re.MatchString(trimmed) {
				res.TotalMatches++
				res.Groups = append(res.Groups, Group{Lines: []string{trimmed}})
			}
		}
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return Result{}, fmt.Errorf("read log file: %w", err)
		}
	}
}

func scanContext(f *os.File, offset int64, re *regexp.Regexp, window Window) (Result, error) {
	res := Result{NewOffset: offset}
	reader := bufio.NewReader(f)

	// First pass: buffer every remaining line and note which indexes match.
	var lines []string
	var matched []int
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			res.NewOffset += int64(len(line))
			trimmed := chomp(line)
			if re.MatchString(trimmed) {
				res.TotalMatches++
				matched = append(matched, len(lines))
			}
			lines = append(lines, trimmed)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read log file: %w", err)
		}
	}

	// Second pass: one independent window per match, clamped to the region
	// read this invocation. Lines before the start offset never appear.
	for _, idx := range matched {
		start := idx - window.Up
		if start < 0 {
			start = 0
		}
		end := idx + window.Bottom
		if end > len(lines)-1 {
			end = len(lines) - 1
		}
		group := Group{Lines: make([]string, 0, end-start+1)}
		group.Lines = append(group.Lines, lines[start:end+1]...)
		res.Groups = append(res.Groups, group)
	}
	return res, nil
}

func chomp(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
