package chat

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/adamavenir/amelie/internal/session"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Options configure chat.
type Options struct {
	Controller  *session.Controller
	InitialCity string
	Notify      bool
	Logger      *log.Logger
}

// Run starts the interactive guide session and blocks until the user quits.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	fmt.Printf("\033]0;%s\007", "amelie")

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	model.Close()
	return err
}

var (
	accentColor = lipgloss.Color("216")
	userColor   = lipgloss.Color("111")
	statusColor = lipgloss.Color("241")
	errorColor  = lipgloss.Color("196")
	faveColor   = lipgloss.Color("220")
)

// Model is the bubbletea model for an interactive guide session.
type Model struct {
	controller *session.Controller
	store      *session.Store
	logger     *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	snapshot    session.Snapshot
	updates     <-chan session.Snapshot
	unsubscribe func()

	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	zoneManager *zone.Manager

	width       int
	height      int
	status      string
	statusError bool
	showRaw     bool
	initialCity string
	quitting    bool

	notify   bool
	notifier func(title, body string) error
	copyText func(text string) error
}

// NewModel builds a model around an existing controller.
func NewModel(opts Options) (*Model, error) {
	if opts.Controller == nil || opts.Controller.Store == nil {
		return nil, fmt.Errorf("chat requires a session controller")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	input := textinput.New()
	input.Placeholder = "city name, question, or /help"
	input.Prompt = "› "
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(accentColor)

	ctx, cancel := context.WithCancel(context.Background())
	store := opts.Controller.Store
	updates, unsubscribe := store.Subscribe()

	return &Model{
		controller:  opts.Controller,
		store:       store,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		snapshot:    store.Snapshot(),
		updates:     updates,
		unsubscribe: unsubscribe,
		viewport:    viewport.New(0, 0),
		input:       input,
		spinner:     spin,
		zoneManager: zone.New(),
		initialCity: opts.InitialCity,
		notify:      opts.Notify,
		notifier:    sendNotification,
		copyText:    copyToClipboard,
	}, nil
}

// Close cancels outstanding requests and stops listening to the store.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		waitForSnapshot(m.updates),
		m.refreshFavoritesCmd(),
	}
	if m.initialCity != "" {
		if cmd := m.startGuide(m.initialCity); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusError = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusError = true
}
