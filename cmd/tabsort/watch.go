package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/b/tabsort/pkg/daemon"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "follow organize events live",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := dialDaemon()
			if err != nil {
				return err
			}
			defer c.Close()

			p := tea.NewProgram(newWatchModel(), tea.WithAltScreen())
			go func() {
				err := c.Subscribe(func(ev daemon.EventPayload) {
					p.Send(eventMsg(ev))
				})
				p.Send(streamClosedMsg{err: err})
			}()
			_, err = p.Run()
			return err
		},
	}
}

type eventMsg daemon.EventPayload

type streamClosedMsg struct{ err error }

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	watchDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type watchModel struct {
	vp     viewport.Model
	lines  []string
	closed bool
	ready  bool
}

func newWatchModel() watchModel {
	return watchModel{}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 2
		}
		m.vp.SetContent(strings.Join(m.lines, "\n"))

	case eventMsg:
		m.lines = append(m.lines, formatEvent(daemon.EventPayload(msg)))
		if m.ready {
			m.vp.SetContent(strings.Join(m.lines, "\n"))
			m.vp.GotoBottom()
		}

	case streamClosedMsg:
		m.closed = true
		line := "stream closed"
		if msg.err != nil {
			line = fmt.Sprintf("stream closed: %v", msg.err)
		}
		m.lines = append(m.lines, watchErrStyle.Render(line))
		if m.ready {
			m.vp.SetContent(strings.Join(m.lines, "\n"))
			m.vp.GotoBottom()
		}
	}

	var cmd tea.Cmd
	if m.ready {
		m.vp, cmd = m.vp.Update(msg)
	}
	return m, cmd
}

func (m watchModel) View() string {
	if !m.ready {
		return "connecting..."
	}
	footer := watchDimStyle.Render("q to quit")
	if m.closed {
		footer = watchErrStyle.Render("disconnected, q to quit")
	}
	return watchTitleStyle.Render("tabsort events") + "\n" + m.vp.View() + "\n" + footer
}

func formatEvent(ev daemon.EventPayload) string {
	ts := watchDimStyle.Render(ev.Time.Format("15:04:05"))
	switch ev.Kind {
	case daemon.EventOrganizeStarted:
		return fmt.Sprintf("%s organize started", ts)
	case daemon.EventOrganizeFinished:
		if ev.Result != nil {
			return fmt.Sprintf("%s organize finished: %d tabs (%d pinned, %d groups, %d ungrouped) in %s",
				ts, ev.Result.TabsMoved(), ev.Result.Pinned, len(ev.Result.Groups), ev.Result.Ungrouped, ev.Result.Duration)
		}
		return fmt.Sprintf("%s organize finished", ts)
	case daemon.EventOrganizeFailed:
		return fmt.Sprintf("%s %s", ts, watchErrStyle.Render("organize failed: "+ev.Error))
	case daemon.EventExtensionChanged:
		return fmt.Sprintf("%s extension: %s", ts, ev.Detail)
	default:
		return fmt.Sprintf("%s %s", ts, ev.Kind)
	}
}
