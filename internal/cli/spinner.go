package cli

import (
	"context"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

type (
	tickMsg struct{}
	stopMsg struct{}
)

// spinnerModel is the bubbletea model behind [Spinner].
type spinnerModel struct {
	message string
	frame   int
	done    bool
}

func tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m spinnerModel) Init() tea.Cmd { return tick() }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		m.frame++
		return m, tick()
	case stopMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	return styleIconSpinner.Render(frame) + " " + StyleDim.Render(m.message)
}

// Spinner shows a progress indicator on stderr until stopped or until its
// context is canceled.
type Spinner struct {
	parent  context.Context
	prog    *tea.Program
	stopped chan struct{}
	once    sync.Once
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return &Spinner{
		parent: ctx,
		prog: tea.NewProgram(spinnerModel{message: message},
			tea.WithContext(ctx),
			tea.WithOutput(os.Stderr),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		stopped: make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		_, _ = s.prog.Run()
	}()
}

// Stop stops the spinner and clears its line. It is safe to call repeatedly.
func (s *Spinner) Stop() {
	s.once.Do(func() { go s.prog.Send(stopMsg{}) })
	<-s.stopped
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context was canceled.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// withSpinner runs fn while a spinner shows message. Without a terminal on
// stderr fn runs silently.
func withSpinner(ctx context.Context, message string, fn func() error) error {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return fn()
	}
	s := newSpinnerWithContext(ctx, message)
	s.Start()
	err := fn()
	s.Stop()
	return err
}
