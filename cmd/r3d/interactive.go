package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	frameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	barWidth   = 40
	recentRows = 6
)

type frameMsg frameResult

type finishedMsg struct{ err error }

type decodeModel struct {
	err      error
	cancel   context.CancelFunc
	title    string
	recent   []frameResult
	spinner  spinner.Model
	total    int
	done     int
	failed   int
	bytes    int
	finished bool
	aborting bool
}

func newDecodeModel(title string, total int, cancel context.CancelFunc) decodeModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = barStyle
	return decodeModel{title: title, total: total, cancel: cancel, spinner: s}
}

func (m decodeModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m decodeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.aborting {
				m.aborting = true
				m.cancel()
			}
		}
		return m, nil

	case frameMsg:
		m.done++
		if msg.Err != nil {
			m.failed++
		} else {
			m.bytes += msg.Bytes
		}
		m.recent = append(m.recent, frameResult(msg))
		if len(m.recent) > recentRows {
			m.recent = m.recent[len(m.recent)-recentRows:]
		}
		return m, nil

	case finishedMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m decodeModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	filled := 0
	if m.total > 0 {
		filled = m.done * barWidth / m.total
	}
	b.WriteString(barStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(helpStyle.Render(strings.Repeat("░", barWidth-filled)))
	fmt.Fprintf(&b, " %d/%d", m.done, m.total)
	if m.failed > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  %d failed", m.failed)))
	}
	b.WriteString("\n\n")

	for _, r := range m.recent {
		b.WriteString(frameStyle.Render(fmt.Sprintf("  frame %6d ", r.Frame)))
		if r.Err != nil {
			b.WriteString(errorStyle.Render(r.Err.Error()))
		} else {
			b.WriteString(detailStyle.Render(fmt.Sprintf("%s  %s", formatBytes(r.Bytes), r.Elapsed.Round(time.Millisecond))))
			if r.Timecode != "" {
				b.WriteString(resultStyle.Render("  " + r.Timecode))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.finished:
		b.WriteString(resultStyle.Render(fmt.Sprintf("done: %s decoded", formatBytes(m.bytes))))
	case m.aborting:
		b.WriteString(m.spinner.View() + errorStyle.Render(" aborting in-flight jobs..."))
	default:
		b.WriteString(m.spinner.View() + helpStyle.Render(" decoding • q abort"))
	}
	b.WriteString("\n")
	return b.String()
}

// isTerminal reports whether out is an interactive terminal.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runInteractive drives run under a live progress view. Quitting the view
// cancels the context handed to run, and the view stays up until run has
// returned.
func runInteractive(ctx context.Context, out io.Writer, title string, total int, run func(context.Context, func(frameResult)) ([]frameResult, error)) ([]frameResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newDecodeModel(title, total, cancel), tea.WithOutput(out))

	var results []frameResult
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		results, runErr = run(ctx, func(r frameResult) { p.Send(frameMsg(r)) })
		p.Send(finishedMsg{err: runErr})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return results, fmt.Errorf("progress view: %w", err)
	}
	<-done
	return results, runErr
}
