package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/service"
)

// AskPort is the TUI-facing subset of the query router.
type AskPort interface {
	Ask(ctx context.Context, req service.AskRequest) (*service.AskResponse, error)
}

// answerMsg carries a finished Ask back into the update loop.
type answerMsg struct {
	question string
	resp     *service.AskResponse
	err      error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	router    AskPort
	timeout   time.Duration
	topK      int
	input     textinput.Model
	viewport  viewport.Model
	answer    *service.AskResponse
	summary   string
	status    string
	cursor    int
	ready     bool
	pending   bool
	lastQuery string
}

// New creates a new TUI model instance. summary is shown under the header.
func New(router AskPort, summary string, topK int, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		router:   router,
		timeout:  timeout,
		topK:     topK,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Loaded. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case answerMsg:
		m.pending = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.answer = nil
		} else {
			m.status = fmt.Sprintf("Answer for %q (%d citations)", msg.question, len(msg.resp.Citations))
			m.answer = msg.resp
			m.cursor = 0
			m.lastQuery = msg.question
		}
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.pending {
				m.pending = true
				m.status = "Thinking..."
				return m, m.ask(q)
			}
		case "down":
			if n := m.citationCount(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if n := m.citationCount(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	router, topK, timeout := m.router, m.topK, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := router.Ask(ctx, service.AskRequest{Message: question, TopK: topK})
		return answerMsg{question: question, resp: resp, err: err}
	}
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Document QA")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) citationCount() int {
	if m.answer == nil {
		return 0
	}
	return len(m.answer.Citations)
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}
	out := m.answer.Answer
	n := len(m.answer.Citations)
	if n == 0 {
		return out
	}
	c := m.answer.Citations[m.cursor]
	title := fmt.Sprintf("Citation %d/%d  [%d] %s (chunk %d)  score=%.4f", m.cursor+1, n, c.Rank, c.Source, c.ChunkID, c.Score)
	return out + "\n\n" + citationTitleStyle.Render(title) + "\n" + highlightBestSentence(c.Excerpt, m.lastQuery)
}

var (
	resultBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	citationTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	unicodeWordRe      = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe         = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	seen := make(map[string]struct{})
	score := 0
	for _, t := range unicodeWordRe.FindAllString(strings.ToLower(sentence), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
