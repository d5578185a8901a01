// Package tui provides the Bubble Tea practice interface: a learning pass
// over face cards followed by a multiple-choice test.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/trainer"
)

type phase int

const (
	phaseResume phase = iota
	phaseLearn
	phaseQuiz
	phaseResults
	phaseError
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 3)
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	optionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	ctx     context.Context
	trainer *trainer.Trainer
	log     *zap.Logger

	region model.Region
	level  model.DifficultyLevel
	snap   *model.SessionSnapshot

	phase     phase
	countdown timer.Model
	options   []model.Name
	answers   []model.TestAnswer
	feedback  int
	result    *model.TestResult
	err       error

	width  int
	height int
}

// NewModel constructs the practice model. When resumable is non-nil the UI
// opens with a resume prompt; otherwise a fresh run starts immediately.
func NewModel(ctx context.Context, tr *trainer.Trainer, region model.Region, level model.DifficultyLevel, resumable *model.SessionSnapshot, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		ctx:      ctx,
		trainer:  tr,
		log:      log,
		region:   region,
		level:    level,
		feedback: -1,
	}
	if resumable != nil {
		m.snap = resumable
		m.phase = phaseResume
	} else {
		m.startFresh()
	}
	return m
}

func (m *Model) startFresh() {
	snap, err := m.trainer.BuildRun(m.ctx, m.region, m.level)
	if err != nil {
		m.fail(err)
		return
	}
	m.snap = snap
	m.phase = phaseLearn
	m.resetCountdown()
}

func (m *Model) fail(err error) {
	m.log.Error("practice run failed", zap.Error(err))
	m.err = err
	m.phase = phaseError
}

func (m *Model) resetCountdown() {
	m.countdown = timer.New(time.Duration(m.snap.TimePerFace) * time.Second)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.phase == phaseLearn {
		return m.countdown.Init()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timer.TickMsg:
		if m.phase != phaseLearn {
			return m, nil
		}
		var cmd tea.Cmd
		m.countdown, cmd = m.countdown.Update(msg)
		return m, cmd
	case timer.TimeoutMsg:
		if m.phase != phaseLearn {
			return m, nil
		}
		return m.nextCard()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.phase {
	case phaseResume:
		return m.handleResumeKey(msg)
	case phaseLearn:
		return m.handleLearnKey(msg)
	case phaseQuiz:
		return m.handleQuizKey(msg)
	case phaseResults, phaseError:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResumeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.phase = phaseLearn
		m.resetCountdown()
		return m, m.countdown.Init()
	case "n", "N":
		if err := m.trainer.Abandon(m.ctx); err != nil {
			m.fail(err)
			return m, nil
		}
		m.startFresh()
		if m.phase == phaseLearn {
			return m, m.countdown.Init()
		}
		return m, nil
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleLearnKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		// leave the session stored so it can be resumed
		return m, tea.Quit
	case "left", "h":
		if m.snap.CurrentIndex > 0 {
			m.snap.CurrentIndex--
			m.resetCountdown()
			return m, m.countdown.Init()
		}
		return m, nil
	case "right", "l", "enter", " ":
		return m.nextCard()
	}
	return m, nil
}

// nextCard advances the learning pass, switching to the quiz after the last
// card.
func (m *Model) nextCard() (tea.Model, tea.Cmd) {
	more, err := m.trainer.Advance(m.ctx, m.snap)
	if err != nil {
		m.fail(err)
		return m, nil
	}
	if !more {
		m.beginQuiz()
		return m, nil
	}
	m.resetCountdown()
	return m, m.countdown.Init()
}

func (m *Model) beginQuiz() {
	m.phase = phaseQuiz
	m.snap.CurrentIndex = 0
	m.answers = m.answers[:0]
	m.feedback = -1
	m.options = m.trainer.BuildOptions(m.snap, 0)
}

func (m *Model) handleQuizKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "1", "2", "3", "4":
		idx := int(msg.String()[0] - '1')
		if idx >= len(m.options) {
			return m, nil
		}
		return m.answer(idx)
	}
	return m, nil
}

func (m *Model) answer(idx int) (tea.Model, tea.Cmd) {
	pair := m.snap.Pairs[m.snap.CurrentIndex]
	chosen := m.options[idx]
	m.feedback = idx
	m.answers = append(m.answers, model.TestAnswer{
		FaceURL:    pair.FaceURL,
		Name:       pair.Name,
		UserAnswer: &chosen,
		Correct:    chosen.ID == pair.Name.ID,
	})

	if m.snap.CurrentIndex+1 >= len(m.snap.Pairs) {
		result, err := m.trainer.Complete(m.ctx, m.snap, m.answers)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.result = &result
		m.phase = phaseResults
		return m, nil
	}

	m.snap.CurrentIndex++
	m.feedback = -1
	m.options = m.trainer.BuildOptions(m.snap, m.snap.CurrentIndex)
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.phase {
	case phaseResume:
		content = m.viewResume()
	case phaseLearn:
		content = m.viewLearn()
	case phaseQuiz:
		content = m.viewQuiz()
	case phaseResults:
		content = m.viewResults()
	case phaseError:
		content = wrongStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n\n" + footerStyle.Render("press any key to quit")
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewResume() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Resume previous session?"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s, %s difficulty, face %d of %d\n\n",
		m.snap.Region, m.snap.Difficulty, m.snap.CurrentIndex+1, len(m.snap.Pairs)))
	b.WriteString(footerStyle.Render("y resume · n start over · q quit"))
	return b.String()
}

func (m *Model) viewLearn() string {
	pair := m.snap.Pairs[m.snap.CurrentIndex]

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Memorize · %s", m.snap.Region)))
	b.WriteString("\n\n")
	b.WriteString(cardStyle.Render(m.renderCard(pair, true)))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf("face %d/%d · %s left · ←/→ navigate · q pause",
		m.snap.CurrentIndex+1, len(m.snap.Pairs), m.countdown.View())))
	return b.String()
}

func (m *Model) viewQuiz() string {
	pair := m.snap.Pairs[m.snap.CurrentIndex]

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Who is this? · %s", m.snap.Region)))
	b.WriteString("\n\n")
	b.WriteString(cardStyle.Render(m.renderCard(pair, false)))
	b.WriteString("\n\n")
	for i, option := range m.options {
		style := optionStyle
		if i == m.feedback {
			style = selectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%d. %s", i+1, option.Display(m.snap.Region))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf("question %d/%d · press 1-4 · q quit",
		m.snap.CurrentIndex+1, len(m.snap.Pairs))))
	return b.String()
}

// renderCard draws the face card. Terminals cannot show the image itself, so
// the card carries the stored metadata plus where the image came from.
func (m *Model) renderCard(pair model.FacePair, withName bool) string {
	var b strings.Builder
	if withName {
		b.WriteString(nameStyle.Render(pair.Name.Display(m.snap.Region)))
		b.WriteString("\n\n")
	}
	b.WriteString(metaStyle.Render(fmt.Sprintf("face %s", shortID(pair.ID))))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render(fmt.Sprintf("image %s", describeImage(pair.FaceURL))))
	return b.String()
}

func (m *Model) viewResults() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Results"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Score: %.0f%% (%d/%d)\n\n",
		m.result.Score(), m.result.CorrectCount, m.result.TotalCount))
	for _, ans := range m.answers {
		mark := correctStyle.Render("✓")
		detail := ans.Name.Display(m.snap.Region)
		if !ans.Correct {
			mark = wrongStyle.Render("✗")
			if ans.UserAnswer != nil {
				detail = fmt.Sprintf("%s (answered %s)",
					ans.Name.Display(m.snap.Region), ans.UserAnswer.Display(m.snap.Region))
			}
		}
		b.WriteString(fmt.Sprintf("%s %s\n", mark, detail))
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("press any key to quit"))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// describeImage summarizes a face URL without dumping base64 into the
// terminal.
func describeImage(u string) string {
	if strings.HasPrefix(u, "data:") {
		mime := u
		if idx := strings.Index(u, ";"); idx > 5 {
			mime = u[5:idx]
		}
		return fmt.Sprintf("%s, %d bytes encoded", mime, len(u))
	}
	return u
}
