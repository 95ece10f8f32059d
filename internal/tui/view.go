package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/convoscout/internal/transcript"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231"))
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	ruleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	botStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	endMarkerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	helperStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	overlayStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 2)
	helpBoxStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

func (m *model) View() string {
	m.refreshViewportIfDirty()

	parts := []string{m.headerView(), m.viewport.View()}
	if overlay := m.overlayView(); overlay != "" {
		parts = append(parts, overlay)
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	} else if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	parts = append(parts, m.footerView())
	return joinNonEmpty(parts)
}

func (m *model) headerView() string {
	conv := m.currentConversation()
	header := headerStyle.Render(fmt.Sprintf("Conversation %d/%d | ID: %s",
		m.index+1, len(m.conversations), conv.ConversationID))

	meta := metaStyle.Render(fmt.Sprintf("Started %s  •  Duration %s",
		formatDate(conv.Metadata.CreatedDate), formatDuration(conv.Metadata.Duration)))
	if len(conv.Metadata.Tags) > 0 {
		meta += "  " + tagStyle.Render("["+strings.Join(conv.Metadata.Tags, "] [")+"]")
	}

	rule := ruleStyle.Render(strings.Repeat("─", m.layout.viewportWidth))
	return strings.Join([]string{header, meta, rule}, "\n")
}

func (m *model) footerView() string {
	hints := "h/l: prev/next  j/k: scroll  g/G: top/bottom  f: search  O: filter  o: tags  r: read  ?: help  q: quit"
	return helperStyle.Render(hints)
}

func (m *model) transcriptContent() string {
	conv := m.currentConversation()
	if len(conv.Messages) == 0 {
		return helperStyle.Render("[No messages in this conversation]")
	}

	wrap := m.layout.viewportWidth - 8
	if wrap < 20 {
		wrap = 20
	}

	var b strings.Builder
	for i, msg := range conv.Messages {
		if ts := formatTimestamp(msg.Timestamp); ts != "" {
			b.WriteString(timestampStyle.Render(ts))
			b.WriteRune('\n')
		}
		prefix := "User: "
		style := userStyle
		if msg.Direction == transcript.DirectionOutgoing {
			prefix = "Bot: "
			style = botStyle
		}
		text := msg.Text
		if text == "" {
			text = "[Empty message]"
		}
		lines := strings.Split(wordwrap.String(text, wrap), "\n")
		indent := strings.Repeat(" ", len(prefix))
		for j, line := range lines {
			if j == 0 {
				b.WriteString(style.Render(prefix + line))
			} else {
				b.WriteString(style.Render(indent + line))
			}
			b.WriteRune('\n')
		}
		if i < len(conv.Messages)-1 {
			b.WriteRune('\n')
		}
	}

	b.WriteRune('\n')
	marker := endMarkerStyle.Render(chatEndMarker)
	b.WriteString(lipgloss.PlaceHorizontal(m.layout.viewportWidth, lipgloss.Center, marker))
	return b.String()
}

func (m *model) overlayView() string {
	switch m.stage {
	case stageSearch:
		return overlayStyle.Render(joinNonEmpty([]string{
			titleStyle.Render("Search for Conversation ID"),
			m.searchInput.View(),
			helperStyle.Render("Enter to search, Esc to cancel."),
		}))
	case stageFilter:
		available := "No tags available"
		if tags := transcript.AllTags(m.conversations); len(tags) > 0 {
			available = strings.Join(tags, ", ")
		}
		return overlayStyle.Render(joinNonEmpty([]string{
			titleStyle.Render("Filter conversations by tag"),
			m.filterInput.View(),
			helperStyle.Render("Tags: " + available),
			helperStyle.Render("Enter to filter, Esc to cancel."),
		}))
	case stageFilterPick:
		return m.filterPickView()
	case stageTags:
		return m.tagManagerView()
	case stageTagEntry:
		return overlayStyle.Render(joinNonEmpty([]string{
			titleStyle.Render("Enter new tag name"),
			m.tagInput.View(),
			helperStyle.Render("Enter to save, Esc to cancel."),
		}))
	}
	return ""
}

func (m *model) filterPickView() string {
	lines := []string{titleStyle.Render("Matching conversations")}
	for i, idx := range m.filterMatches {
		conv := m.conversations[idx]
		entry := fmt.Sprintf("%s  (%s)", conv.ConversationID, strings.Join(conv.Metadata.Tags, ", "))
		if i == m.pickCursor {
			entry = cursorStyle.Render(entry)
		}
		lines = append(lines, entry)
	}
	lines = append(lines, helperStyle.Render("j/k to move, Enter to open, Esc to cancel."))
	return overlayStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) tagManagerView() string {
	conv := m.currentConversation()
	lines := []string{titleStyle.Render("Manage Tags (Space to toggle, Enter when done)")}
	for i, tag := range m.tagOptions {
		checkbox := "[ ]"
		if conv.HasTag(tag) {
			checkbox = "[x]"
		}
		entry := checkbox + " " + tag
		if i == m.tagCursor {
			entry = cursorStyle.Render(entry)
		}
		lines = append(lines, entry)
	}
	create := createTagEntry
	if m.tagCursor == len(m.tagOptions) {
		create = cursorStyle.Render(create)
	}
	lines = append(lines, create)
	return overlayStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		titleStyle.Render("Keyboard Shortcuts"),
		helperStyle.Render("h/l or ←/→    previous / next conversation"),
		helperStyle.Render("j/k or ↑/↓    scroll up / down"),
		helperStyle.Render("Space, PgUp   page down / page up"),
		helperStyle.Render("g / G         go to top / bottom"),
		helperStyle.Render("f             search for conversation by ID"),
		helperStyle.Render("O             filter conversations by tag"),
		helperStyle.Render("o             manage tags for current conversation"),
		helperStyle.Render("r             toggle read/unread"),
		helperStyle.Render("y / T         copy conversation ID / full JSON"),
		helperStyle.Render("?             toggle this help"),
		helperStyle.Render("q             quit"),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func joinNonEmpty(parts []string) string {
	var filtered []string
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n")
}
