// Package diff renders unified diffs of formatter output.
package diff

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// Unified generates a unified diff between oldText and newText.
// Returns an empty string if the inputs are identical.
func Unified(filename, oldText, newText string) string {
	if oldText == newText {
		return ""
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(oldText),
		B:        splitLines(newText),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  contextLines,
	})
	if err != nil {
		// difflib only fails when its writer does; a strings.Builder never does.
		return ""
	}
	return out
}

// splitLines splits text after each newline. A final line without a newline
// gets one so it still renders as a line of its own. An empty string
// produces zero lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

// Colorize highlights a unified diff: headers bold, hunk ranges cyan,
// removals red and additions green. With enabled false the diff is returned
// unchanged.
func Colorize(d string, enabled bool) string {
	if !enabled || d == "" {
		return d
	}

	header := color.New(color.Bold)
	hunk := color.New(color.FgCyan)
	del := color.New(color.FgRed)
	add := color.New(color.FgGreen)
	for _, c := range []*color.Color{header, hunk, del, add} {
		c.EnableColor()
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(d, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(body, "---"), strings.HasPrefix(body, "+++"):
			b.WriteString(header.Sprint(body))
		case strings.HasPrefix(body, "@@"):
			b.WriteString(hunk.Sprint(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(del.Sprint(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(add.Sprint(body))
		default:
			b.WriteString(body)
		}
		if strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
