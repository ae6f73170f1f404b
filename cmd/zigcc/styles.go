package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zigcc/internal/trace"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	plainStyle  = lipgloss.NewStyle()
)

// Column widths of the trace table.
const (
	indexWidth   = 5
	exitWidth    = 6
	bytesWidth   = 9
	dirWidth     = 32
	commandWidth = 60
)

func cell(style lipgloss.Style, width int, text string) string {
	return style.Width(width).MaxWidth(width).Render(truncate(text, width-1))
}

func truncate(s string, max int) string {
	if max <= 0 || lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func renderTraceHeader() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell(headerStyle, indexWidth, "#"),
		cell(headerStyle, exitWidth, "EXIT"),
		cell(headerStyle, bytesWidth, "STDOUT"),
		cell(headerStyle, bytesWidth, "STDERR"),
		cell(headerStyle, dirWidth, "CWD"),
		cell(headerStyle, commandWidth, "COMMAND"),
	)
}

func renderTraceRow(n int, rec trace.Record) string {
	exit := okStyle
	if rec.ExitCode != 0 {
		exit = failStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell(mutedStyle, indexWidth, fmt.Sprint(n)),
		cell(exit, exitWidth, fmt.Sprint(rec.ExitCode)),
		cell(plainStyle, bytesWidth, fmt.Sprint(len(rec.Stdout))),
		cell(plainStyle, bytesWidth, fmt.Sprint(len(rec.Stderr))),
		cell(mutedStyle, dirWidth, rec.Dir),
		cell(plainStyle, commandWidth, strings.Join(commandTail(rec.Command), " ")),
	)
}

// commandTail drops the toolchain path, which is the same on every row.
func commandTail(command string) []string {
	fields := strings.Fields(command)
	if len(fields) > 1 {
		return fields[1:]
	}
	return fields
}

func renderTraceTable(records []trace.Record) string {
	var b strings.Builder
	b.WriteString(renderTraceHeader())
	b.WriteByte('\n')
	for i, rec := range records {
		b.WriteString(renderTraceRow(i+1, rec))
		b.WriteByte('\n')
	}
	return b.String()
}
