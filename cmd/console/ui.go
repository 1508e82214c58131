package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "Say something..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *Session
	npcName      string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	spinner      spinner.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// pending is the player line awaiting a reply
	pending string
	// notices are system lines shown after the transcript
	notices []string

	showQuitModal bool
}

type dialogueResponseMsg struct {
	message  string
	response *chat.DialogueResponse
	err      error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = promptStyle

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, npcName string) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = noticeStyle

	return ConsoleUI{
		config:       cfg,
		client:       client,
		session:      NewSession(cfg.PlayerName, cfg.NPCID),
		npcName:      npcName,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: viewport.New(20, 20),
		spinner:      sp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlT:
			m.notice("time of day is now " + m.session.CycleTimeOfDay())
			return m, nil
		case tea.KeyCtrlQ:
			m.notice("quest status is now " + m.session.CycleQuestStatus())
			return m, nil
		case tea.KeyCtrlY:
			m.copyLastReply()
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				m.handleCommand(input)
				return m, nil
			}

			m.loading = true
			m.pending = input
			m.notices = nil
			m.refresh()
			return m, tea.Batch(m.sendDialogue(input), m.spinner.Tick)
		}

	case dialogueResponseMsg:
		m.loading = false
		m.pending = ""
		if msg.err != nil {
			// The failed line is not recorded; the player can resend it.
			m.textarea.SetValue(msg.message)
			m.notices = append(m.notices, errorStyle.Render(describeError(msg.err, m.npcName)))
		} else {
			m.session.Record(msg.message, msg.response.NPCResponse)
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		m.refresh()
		return m, spCmd
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6
	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m *ConsoleUI) notice(text string) {
	m.notices = append(m.notices, noticeStyle.Render(text))
	m.refresh()
}

func (m *ConsoleUI) copyLastReply() {
	reply, ok := m.session.LastReply()
	if !ok {
		m.notice("nothing to copy yet")
		return
	}
	if err := clipboard.WriteAll(reply); err != nil {
		m.notices = append(m.notices, errorStyle.Render("copy failed: "+err.Error()))
		m.refresh()
		return
	}
	m.notice("copied last reply")
}

// refresh rebuilds both panels for the current width.
func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	m.chatViewport.SetContent(m.transcript())
	m.chatViewport.GotoBottom()
	m.metaViewport.SetContent(m.metadata())
}

func (m *ConsoleUI) transcript() string {
	width := m.chatViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(m.npcName)) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, turn := range m.session.History {
		content.WriteString(m.formatTurn(turn.Speaker, turn.Text, width))
	}
	if m.pending != "" {
		content.WriteString(m.formatTurn(chat.SpeakerPlayer, m.pending, width))
	}
	if m.loading {
		content.WriteString(m.spinner.View() + promptStyle.Render(" "+m.npcName+" is thinking...") + "\n\n")
	}
	for _, n := range m.notices {
		content.WriteString(wordwrap.String(n, width) + "\n")
	}
	return content.String()
}

func (m *ConsoleUI) formatTurn(speaker chat.Speaker, text string, width int) string {
	label := userStyle.Render(m.session.PlayerName + ": ")
	prefix := len(m.session.PlayerName) + 2
	if speaker == chat.SpeakerNPC {
		label = npcStyle.Render(m.npcName + ": ")
		prefix = len(m.npcName) + 2
	}
	return label + wordwrap.String(text, width-prefix) + "\n\n"
}

func (m *ConsoleUI) metadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLD") + "\n\n")
	content.WriteString("Time of day:\n" + m.session.World[WorldTimeOfDay] + "\n\n")
	content.WriteString("Quest:\n" + m.session.World[WorldQuestStatus] + "\n\n")
	content.WriteString(fmt.Sprintf("Turns:\n%d\n\n", len(m.session.History)/2))

	content.WriteString("Keys:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+T: Time\n")
	content.WriteString("• Ctrl+Q: Quest\n")
	content.WriteString("• Ctrl+Y: Copy\n")
	content.WriteString("• Esc: Quit\n")
	content.WriteString("• /help\n")
	return content.String()
}

func (m *ConsoleUI) handleCommand(input string) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/help":
		m.notice("/reset clears the conversation, /world shows world state. Ctrl+T and Ctrl+Q change the world.")
	case "/reset":
		m.session.Reset()
		m.notices = nil
		m.notice("conversation cleared")
	case "/world":
		m.notice(fmt.Sprintf("time_of_day=%s quest_status=%s",
			m.session.World[WorldTimeOfDay], m.session.World[WorldQuestStatus]))
	default:
		m.notice("unknown command " + input)
	}
}

func (m ConsoleUI) sendDialogue(message string) tea.Cmd {
	req := m.session.Request(message)
	return func() tea.Msg {
		resp, err := sendDialogue(m.client, m.config.APIBaseURL, req)
		return dialogueResponseMsg{message: message, response: resp, err: err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the tavern?"))
	content.WriteString("\n\n")
	content.WriteString("The conversation is not saved anywhere.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to stay"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(m.metaViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
