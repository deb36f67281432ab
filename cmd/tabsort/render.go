package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/b/tabsort/pkg/daemon"
	"github.com/b/tabsort/pkg/sorter"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func init() {
	// Keep output rendering stable across terminals
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

// terminalWidth returns the output width, defaulting to 80 when stdout is
// not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func renderStatus(w io.Writer, status daemon.StatusPayload) {
	width := terminalWidth()
	fmt.Fprintln(w, headerStyle.Render("tabsortd"))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("uptime"), status.Uptime.Round(time.Second))

	if status.Extension {
		ext := status.Browser
		if status.Version != "" {
			ext += " " + status.Version
		}
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("extension"), okStyle.Render(truncate(ext, width-13)))
	} else {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("extension"), errStyle.Render("not connected"))
	}

	if status.LastError != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("last error"), errStyle.Render(truncate(status.LastError, width-13)))
	}
	if status.LastResult != nil {
		fmt.Fprintf(w, "%s %s ago\n", labelStyle.Render("last run"), time.Since(status.LastRun).Round(time.Second))
		printResult(w, *status.LastResult, false)
	}
}

func printResult(w io.Writer, res sorter.Result, dryRun bool) {
	suffix := ""
	if dryRun {
		suffix = " (dry run, nothing moved)"
	}
	fmt.Fprintf(w, "Sorted %d tabs in window %d%s\n", res.TabsMoved(), res.WindowID, suffix)
	if res.Pinned > 0 {
		fmt.Fprintf(w, "  pinned     %d\n", res.Pinned)
	}
	width := terminalWidth()
	for _, g := range res.Groups {
		title := g.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "  group      %s (%d tabs)\n", truncate(title, width-24), g.Tabs)
	}
	if res.Ungrouped > 0 {
		fmt.Fprintf(w, "  ungrouped  %d\n", res.Ungrouped)
	}
}

func truncate(s string, max int) string {
	if max < 1 {
		return s
	}
	return runewidth.Truncate(s, max, "…")
}
