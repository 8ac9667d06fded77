package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// progress reports what a long running command is doing.
type progress interface {
	Status(detail string)
	Stop()
}

type noProgress struct{}

func (noProgress) Status(string) {}
func (noProgress) Stop()         {}

// newProgress returns a spinner on interactive terminals and a no-op
// otherwise.
func newProgress(env *environment) progress {
	if env.interactive == nil || !env.interactive() {
		return noProgress{}
	}
	return newSpinnerDisplay(env.stderr)
}

// newStepProgress is newProgress for lifecycle steps. Steps that spawn child
// processes get no spinner so installer output and prompts stay readable.
func newStepProgress(env *environment, spawns bool) progress {
	if spawns {
		return noProgress{}
	}
	return newProgress(env)
}

type statusMsg string
type doneMsg struct{}

// spinnerModel is the bubbletea model for the inline spinner.
type spinnerModel struct {
	spinner spinner.Model
	detail  string
	updates chan tea.Msg
}

func newSpinnerModel() *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = spinnerStyle
	return &spinnerModel{
		spinner: s,
		detail:  "Starting",
		updates: make(chan tea.Msg, 16),
	}
}

func (m *spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

func (m *spinnerModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.detail = string(msg)
		return m, m.waitForUpdate()
	case doneMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	return m.spinner.View() + " " + dimStyle.Render(m.detail)
}

func (m *spinnerModel) send(msg tea.Msg) {
	select {
	case m.updates <- msg:
	default:
		// Drop if channel is full
	}
}

// spinnerDisplay runs the spinner program inline on w.
type spinnerDisplay struct {
	program *tea.Program
	model   *spinnerModel
	writer  io.Writer
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
}

func newSpinnerDisplay(w io.Writer) *spinnerDisplay {
	model := newSpinnerModel()
	program := tea.NewProgram(
		model,
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	d := &spinnerDisplay{
		program: program,
		model:   model,
		writer:  w,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(d.done)
	}()
	return d
}

func (d *spinnerDisplay) Status(detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.model.send(statusMsg(detail))
}

func (d *spinnerDisplay) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	d.model.send(doneMsg{})
	select {
	case <-d.done:
	case <-time.After(500 * time.Millisecond):
		d.program.Kill()
	}
	_, _ = fmt.Fprint(d.writer, "\r\033[K")
}
