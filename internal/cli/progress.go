package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/coursegraph/coursegraph/internal/ingest"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// fileProgressMsg carries one folder ingestion update.
type fileProgressMsg ingest.Progress

// ingestDoneMsg carries the final ingestion result.
type ingestDoneMsg struct {
	courses int
	chunks  int
	err     error
}

// ingestModel is the bubbletea model for folder ingestion progress.
type ingestModel struct {
	updates  <-chan ingest.Progress
	done     <-chan ingestDoneMsg
	progress progress.Model
	theme    Theme
	current  ingest.Progress
	result   ingestDoneMsg
	finished bool
	quitting bool
}

func newIngestModel(updates <-chan ingest.Progress, done <-chan ingestDoneMsg) ingestModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return ingestModel{
		updates:  updates,
		done:     done,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (wait for the first update).
func (m ingestModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		m.progress.Init(),
	)
}

// waitForEvent blocks on the next ingestion event.
func (m ingestModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-m.updates:
			return fileProgressMsg(p)
		case d := <-m.done:
			return d
		}
	}
}

// Update handles messages and returns the updated model.
func (m ingestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case fileProgressMsg:
		m.current = ingest.Progress(msg)
		return m, m.waitForEvent()

	case ingestDoneMsg:
		m.result = msg
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m ingestModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m ingestModel) renderContent() string {
	if m.finished {
		return m.finalView()
	}

	if m.current.Total == 0 {
		return "Scanning course documents...\n"
	}

	pct := float64(m.current.Done) / float64(m.current.Total)

	status := m.theme.statusStyle().Render("[indexing]")
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d files", m.current.Done, m.current.Total)
	file := m.theme.hintStyle().Render(filepath.Base(m.current.Path))

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, file)
}

func (m ingestModel) finalView() string {
	if m.result.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Ingestion failed: %s\n", m.result.err))
	}

	var output string
	output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
	output += fmt.Sprintf("  Courses added: %d\n", m.result.courses)
	output += fmt.Sprintf("  Chunks added:  %d\n", m.result.chunks)
	return output
}

// RunIngestProgress runs the folder ingestion under an interactive progress
// UI. Ctrl+C cancels the ingestion context and waits for it to wind down.
func RunIngestProgress(ctx context.Context, run func(context.Context, ingest.ProgressFunc) (int, int, error)) (int, int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan ingest.Progress)
	done := make(chan ingestDoneMsg, 1)

	go func() {
		courses, chunks, err := run(ctx, func(p ingest.Progress) {
			select {
			case updates <- p:
			case <-ctx.Done():
			}
		})
		done <- ingestDoneMsg{courses: courses, chunks: chunks, err: err}
	}()

	p := tea.NewProgram(newIngestModel(updates, done))
	finalModel, err := p.Run()
	if err != nil {
		return 0, 0, fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(ingestModel); ok {
		if m.finished {
			return m.result.courses, m.result.chunks, m.result.err
		}
		if m.quitting {
			cancel()
			result := <-done
			return result.courses, result.chunks, fmt.Errorf("ingestion cancelled")
		}
	}

	result := <-done
	return result.courses, result.chunks, result.err
}
