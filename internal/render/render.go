// Package render turns computed scan results into the agent output markup.
// It performs no scanning or state bookkeeping of its own.
package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Mode selects how match groups are emitted.
type Mode string

const (
	// ModeAggregate wraps every group in match elements inside one module
	// element, with line content XML-escaped.
	ModeAggregate Mode = "aggregate"
	// ModeRaw concatenates group lines verbatim with no wrapping.
	ModeRaw Mode = "raw"
)

// ParseMode validates a mode string from config or flags.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeAggregate, "":
		return ModeAggregate, nil
	case ModeRaw:
		return ModeRaw, nil
	default:
		return "", fmt.Errorf("output mode: unsupported value %q", value)
	}
}

// Report is the data handed over by the scanning core.
type Report struct {
	Module       string
	Groups       [][]string
	TotalMatches int
	Summary      bool
}

// Write emits the report to w in the selected mode. Nothing is written for an
// empty report unless a summary was requested.
func Write(w io.Writer, mode Mode, rep Report) error {
	switch mode {
	case ModeRaw:
		return writeRaw(w, rep)
	default:
		return writeAggregate(w, rep)
	}
}

func writeAggregate(w io.Writer, rep Report) error {
	var b strings.Builder
	if len(rep.Groups) > 0 {
		fmt.Fprintf(&b, "<module name=%q>\n", rep.Module)
		for _, lines := range rep.Groups {
			b.WriteString("<match>\n")
			for _, line := range lines {
				b.WriteString(escape(line))
				b.WriteByte('\n')
			}
			b.WriteString("</match>\n")
		}
		b.WriteString("</module>\n")
	}
	if rep.Summary {
		fmt.Fprintf(&b, "<summary module=%q matches=\"%d\"/>\n", rep.Module, rep.TotalMatches)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRaw(w io.Writer, rep Report) error {
	var b strings.Builder
	for _, lines := range rep.Groups {
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if rep.Summary {
		fmt.Fprintf(&b, "%s: %d matches\n", rep.Module, rep.TotalMatches)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escape(line string) string {
	var b strings.Builder
	// xml.EscapeText only fails on writer errors; strings.Builder has none.
	_ = xml.EscapeText(&b, []byte(line))
	return b.String()
}
