package main

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/charmbracelet/x/exp/ordered"
)

const (
	spinnerFPS  = time.Second / 10
	minBarWidth = 10
	maxBarWidth = 60
	barPadding  = 4
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// progressMsg carries the latest state of the run.
type progressMsg batch.State

// runDoneMsg is sent once the run returns, successfully or not.
type runDoneMsg struct{}

// progressModel is the Bubble Tea model that shows how far a run got. It
// renders to stderr, so the result can be piped.
type progressModel struct {
	spinner  spinner.Model
	bar      progress.Model
	state    batch.State
	title    string
	cancel   context.CancelFunc
	canceled bool
	done     bool
}

func newProgressModel(s styles, title string, cancel context.CancelFunc) progressModel {
	return progressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Spinner{Frames: spinnerFrames, FPS: spinnerFPS}),
			spinner.WithStyle(s.Spinner),
		),
		bar: progress.New(
			progress.WithGradient("#F967DC", "#6B50FF"),
			progress.WithWidth(maxBarWidth),
			progress.WithoutPercentage(),
		),
		title:  title,
		cancel: cancel,
	}
}

// Init implements tea.Model.
func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.state = batch.State(msg)
		return m, nil
	case runDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = ordered.Clamp(msg.Width-barPadding, minBarWidth, maxBarWidth)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.canceled = true
			m.cancel()
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m progressModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.spinner.View())
	sb.WriteString(" ")
	sb.WriteString(m.title)
	if m.state.Total > 0 {
		sb.WriteString(" ")
		sb.WriteString(m.state.Progress())
	}
	sb.WriteString("\n")
	sb.WriteString(m.bar.ViewAs(m.percent()))
	return sb.String()
}

func (m progressModel) percent() float64 {
	if m.state.Total == 0 {
		return 0
	}
	return ordered.Clamp(float64(m.state.Done)/float64(m.state.Total), 0, 1)
}
