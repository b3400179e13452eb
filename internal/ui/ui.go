package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tbx/internal/shared"
	"github.com/desertthunder/tbx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlanView ViewState = iota
	ConfirmView
	ApplyView
	ResultView
)

// Applier executes a prepared plan. [tasks.BulkEngine] implements it.
type Applier interface {
	Apply(ctx context.Context, plan *tasks.Plan, dryRun bool, progress chan<- tasks.ProgressUpdate) *tasks.Result
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       Applier
	plan         *tasks.Plan
	dryRun       bool
	width        int
	height       int
	planList     list.Model
	progressChan chan tasks.ProgressUpdate
	resultChan   chan *tasks.Result
	progress     tasks.ProgressUpdate
	failures     []string
	result       *tasks.Result
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model reviewing plan before it is applied through engine.
func NewModel(ctx context.Context, engine Applier, plan *tasks.Plan, dryRun bool) *Model {
	planList := list.New(mutationItems(plan.Mutations), list.NewDefaultDelegate(), 0, 0)
	planList.Title = planTitle(plan)

	return &Model{
		ctx:      ctx,
		view:     PlanView,
		engine:   engine,
		plan:     plan,
		dryRun:   dryRun,
		planList: planList,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Run starts the TUI and blocks until the user quits.
//
// Returns [shared.ErrAborted] when the user leaves before applying the plan.
func Run(ctx context.Context, engine Applier, plan *tasks.Plan, dryRun bool) (*tasks.Result, error) {
	m := NewModel(ctx, engine, plan, dryRun)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}

	result := final.(*Model).Result()
	if result == nil {
		return nil, shared.ErrAborted
	}
	return result, nil
}

// Result returns the outcome of the apply step, or nil if the plan was never applied.
func (m *Model) Result() *tasks.Result {
	return m.result
}

// State returns the current view.
func (m *Model) State() ViewState {
	return m.view
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.planList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlanView:
			return m.handlePlanKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ApplyView:
			return m, nil
		case ResultView:
			if key.Matches(msg, m.keys.quit, m.keys.enter) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			update := msg.data.(tasks.ProgressUpdate)
			m.progress = update
			if update.Err != nil {
				m.failures = append(m.failures, update.Message)
			}
			return m, m.waitForProgress()
		case MsgApplyComplete:
			m.result = msg.data.(*tasks.Result)
			m.progressChan = nil
			m.view = ResultView
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.view == PlanView {
		m.planList, cmd = m.planList.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlanView:
		return m.renderPlan()
	case ConfirmView:
		return m.renderConfirm()
	case ApplyView:
		return m.renderApply()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.planList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.planList, cmd = m.planList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		// An empty plan has nothing to confirm but still yields a result.
		if len(m.plan.Mutations) == 0 {
			m.view = ApplyView
			return m, m.startApply()
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.planList, cmd = m.planList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.no, m.keys.back):
		m.view = PlanView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = ApplyView
		return m, m.startApply()
	}
	return m, nil
}

func (m *Model) startApply() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.resultChan = make(chan *tasks.Result, 1)

	progress, results := m.progressChan, m.resultChan
	go func() {
		results <- m.engine.Apply(m.ctx, m.plan, m.dryRun, progress)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, results := m.progressChan, m.resultChan
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return applyCompleteMsg(<-results)
		}
		return progressUpdateMsg(update)
	}
}

func planTitle(plan *tasks.Plan) string {
	title := fmt.Sprintf("%s on %s: %d changes", plan.Operation, plan.BoardID, len(plan.Mutations))
	if plan.TargetBoardID != "" {
		title = fmt.Sprintf("%s from %s to %s: %d changes", plan.Operation, plan.BoardID, plan.TargetBoardID, len(plan.Mutations))
	}
	return title
}

func (m *Model) warnings() string {
	var b strings.Builder
	if len(m.plan.MissingLabels) > 0 {
		b.WriteString(styles.warn.Render("Labels not found: "+strings.Join(m.plan.MissingLabels, ", ")) + "\n")
	}
	if len(m.plan.SkippedLists) > 0 {
		b.WriteString(styles.warn.Render("Lists without a target: "+strings.Join(m.plan.SkippedLists, ", ")) + "\n")
	}
	return b.String()
}

func (m *Model) renderPlan() string {
	if len(m.plan.Mutations) == 0 {
		return fmt.Sprintf("%s\n%s\n%s",
			styles.title.Render(planTitle(m.plan)),
			m.warnings()+styles.help.Render("Nothing to do."),
			m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit}))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", m.warnings(), m.planList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	question := fmt.Sprintf("Apply %d changes to board %s?", len(m.plan.Mutations), m.plan.BoardID)
	if m.dryRun {
		question = fmt.Sprintf("Preview %d changes (dry run, nothing is written)?", len(m.plan.Mutations))
	}

	title := styles.title.Render(question)
	info := fmt.Sprintf("\nOperation: %s\nChanges: %d\n", m.plan.Operation, len(m.plan.Mutations))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s%s\n%s", title, info, m.warnings(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderApply() string {
	title := styles.title.Render(fmt.Sprintf("Applying %s", m.plan.Operation))

	phase := "Starting..."
	if m.progress.Phase == tasks.ApplyChanges {
		phase = fmt.Sprintf("Writing cards (%d/%d)", m.progress.Step, m.progress.Total)
	}

	view := fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
	if len(m.failures) > 0 {
		view += "\n\n" + styles.err.Render(fmt.Sprintf("%d failed so far", len(m.failures)))
	}
	return view
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	r := m.result
	heading := styles.ok.Render("✓ Done")
	if r.DryRun {
		heading = styles.ok.Render("✓ Dry run complete")
	}
	if r.Failed() > 0 {
		heading = styles.warn.Render(fmt.Sprintf("Done with %d errors", r.Failed()))
	}

	info := fmt.Sprintf("\nProcessed: %d\nSuccess: %d\nErrors: %d", r.Processed, r.Success, r.Failed())

	var failed string
	if len(r.Errors) > 0 {
		failed = "\n\n" + styles.err.Render("Failed cards:")
		for _, e := range r.Errors {
			failed += fmt.Sprintf("\n  • %s: %s", e.Name, e.Error)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", heading, info, failed, helpView)
}
