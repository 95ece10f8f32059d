package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/convoscout/internal/transcript"
)

// Config wires runtime options into the viewer program.
type Config struct {
	TranscriptPath string
	Conversations  []transcript.Conversation
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	searchInput := textinput.New()
	searchInput.Placeholder = searchPlaceholder
	searchInput.CharLimit = 120
	searchInput.Width = 50

	filterInput := textinput.New()
	filterInput.Placeholder = filterPlaceholder
	filterInput.CharLimit = 60
	filterInput.Width = 40

	tagInput := textinput.New()
	tagInput.Placeholder = tagPlaceholder
	tagInput.CharLimit = 60
	tagInput.Width = 40

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &model{
		config:        config,
		conversations: config.Conversations,
		stage:         stageBrowse,
		searchInput:   searchInput,
		filterInput:   filterInput,
		tagInput:      tagInput,
		viewport:      vp,
		layout:        newPageLayout(),
		viewportDirty: true,
		infoMessage:   "Press ? for keyboard shortcuts.",
	}
}

type model struct {
	config Config
	stage  stage

	conversations []transcript.Conversation
	index         int

	viewport    viewport.Model
	layout      pageLayout
	searchInput textinput.Model
	filterInput textinput.Model
	tagInput    textinput.Model

	// tag manager state
	tagOptions    []string
	tagCursor     int
	tagsBackup    []string
	filterMatches []int
	pickCursor    int

	helpVisible   bool
	viewportDirty bool
	infoMessage   string
	errorMessage  string
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.markViewportDirty()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageSearch:
		return m.handleSearchKey(key)
	case stageFilter:
		return m.handleFilterKey(key)
	case stageFilterPick:
		return m.handleFilterPickKey(key)
	case stageTags:
		return m.handleTagsKey(key)
	case stageTagEntry:
		return m.handleTagEntryKey(key)
	}
	return m.handleBrowseKey(key)
}

func (m *model) handleBrowseKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "l", "right", "n":
		m.moveConversation(1)
	case "h", "left", "p":
		m.moveConversation(-1)
	case "j", "down":
		m.refreshViewportIfDirty()
		m.viewport.LineDown(1)
	case "k", "up":
		m.refreshViewportIfDirty()
		m.viewport.LineUp(1)
	case " ":
		m.refreshViewportIfDirty()
		m.viewport.ViewDown()
	case "pgup":
		m.refreshViewportIfDirty()
		m.viewport.ViewUp()
	case "g":
		m.refreshViewportIfDirty()
		m.viewport.GotoTop()
	case "G":
		m.refreshViewportIfDirty()
		m.viewport.GotoBottom()
	case "f":
		m.stage = stageSearch
		m.searchInput.Reset()
		m.clearMessages()
		return m, m.searchInput.Focus()
	case "O":
		m.stage = stageFilter
		m.filterInput.Reset()
		m.clearMessages()
		return m, m.filterInput.Focus()
	case "o":
		m.openTagManager()
	case "r":
		m.toggleUnread()
	case "y":
		m.copyConversationID()
	case "T":
		m.copyConversationJSON()
	case "?":
		m.helpVisible = !m.helpVisible
	}
	return m, nil
}

func (m *model) handleSearchKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.closeOverlay()
		return m, nil
	case "enter":
		query := m.searchInput.Value()
		m.closeOverlay()
		if !m.jumpToConversation(query) {
			m.errorMessage = "Conversation not found"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(key)
	return m, cmd
}

func (m *model) handleFilterKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.closeOverlay()
		return m, nil
	case "enter":
		tag := m.filterInput.Value()
		m.closeOverlay()
		matches := m.matchingConversations(tag)
		if len(matches) == 0 {
			m.errorMessage = fmt.Sprintf("No conversations with tag %q", tag)
			return m, nil
		}
		m.filterMatches = matches
		m.pickCursor = 0
		m.stage = stageFilterPick
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(key)
	return m, cmd
}

func (m *model) handleFilterPickKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.closeOverlay()
	case "j", "down":
		if m.pickCursor < len(m.filterMatches)-1 {
			m.pickCursor++
		}
	case "k", "up":
		if m.pickCursor > 0 {
			m.pickCursor--
		}
	case "enter":
		m.setIndex(m.filterMatches[m.pickCursor])
		m.closeOverlay()
	}
	return m, nil
}

func (m *model) handleTagsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		// Cancel: restore the tags as they were when the manager opened.
		m.currentConversation().Metadata.Tags = m.tagsBackup
		m.closeOverlay()
	case "j", "down":
		if m.tagCursor < len(m.tagOptions) {
			m.tagCursor++
		}
	case "k", "up":
		if m.tagCursor > 0 {
			m.tagCursor--
		}
	case " ":
		if m.tagCursor == len(m.tagOptions) {
			m.stage = stageTagEntry
			m.tagInput.Reset()
			return m, m.tagInput.Focus()
		}
		m.toggleTagAtCursor()
	case "enter":
		if m.tagCursor == len(m.tagOptions) {
			m.stage = stageTagEntry
			m.tagInput.Reset()
			return m, m.tagInput.Focus()
		}
		m.commitTags()
		m.closeOverlay()
	}
	return m, nil
}

func (m *model) handleTagEntryKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.stage = stageTags
		return m, nil
	case "enter":
		name := trimTag(m.tagInput.Value())
		m.stage = stageTags
		if name == "" {
			return m, nil
		}
		m.currentConversation().AddTag(name)
		m.tagOptions = mergeOption(m.tagOptions, name)
		return m, nil
	}
	var cmd tea.Cmd
	m.tagInput, cmd = m.tagInput.Update(key)
	return m, cmd
}

func (m *model) moveConversation(delta int) {
	m.setIndex(m.index + delta)
}

func (m *model) setIndex(index int) {
	if index < 0 || index >= len(m.conversations) {
		return
	}
	if index != m.index {
		m.index = index
		m.markViewportDirty()
		m.clearMessages()
	}
	m.refreshViewportIfDirty()
	m.viewport.GotoTop()
}

func (m *model) currentConversation() *transcript.Conversation {
	return &m.conversations[m.index]
}

func (m *model) jumpToConversation(conversationID string) bool {
	for i, conv := range m.conversations {
		if conv.ConversationID == conversationID {
			m.setIndex(i)
			return true
		}
	}
	return false
}

func (m *model) matchingConversations(tag string) []int {
	var matches []int
	for i, conv := range m.conversations {
		if conv.HasTag(tag) {
			matches = append(matches, i)
		}
	}
	return matches
}

func (m *model) openTagManager() {
	conv := m.currentConversation()
	m.tagsBackup = append([]string(nil), conv.Metadata.Tags...)
	m.tagOptions = transcript.AllTags(m.conversations)
	m.tagCursor = 0
	m.stage = stageTags
	m.clearMessages()
}

func (m *model) toggleTagAtCursor() {
	tag := m.tagOptions[m.tagCursor]
	conv := m.currentConversation()
	if conv.HasTag(tag) {
		conv.RemoveTag(tag)
	} else {
		conv.AddTag(tag)
	}
}

func (m *model) commitTags() {
	if err := transcript.Rewrite(m.config.TranscriptPath, m.conversations); err != nil {
		m.currentConversation().Metadata.Tags = m.tagsBackup
		m.errorMessage = fmt.Sprintf("Failed to save tags: %v", err)
		return
	}
	m.infoMessage = "Tags saved."
}

func (m *model) toggleUnread() {
	conv := m.currentConversation()
	backup := append([]string(nil), conv.Metadata.Tags...)
	if conv.HasTag(transcript.TagUnread) {
		conv.RemoveTag(transcript.TagUnread)
	} else {
		conv.AddTag(transcript.TagUnread)
	}
	if err := transcript.Rewrite(m.config.TranscriptPath, m.conversations); err != nil {
		conv.Metadata.Tags = backup
		m.errorMessage = fmt.Sprintf("Failed to save tags: %v", err)
		return
	}
	if conv.HasTag(transcript.TagUnread) {
		m.infoMessage = "Marked unread."
	} else {
		m.infoMessage = "Marked read."
	}
}

func (m *model) copyConversationID() {
	if err := clipboard.WriteAll(m.currentConversation().ConversationID); err != nil {
		m.errorMessage = fmt.Sprintf("Clipboard unavailable: %v", err)
		return
	}
	m.infoMessage = "Conversation ID copied."
}

func (m *model) copyConversationJSON() {
	data, err := json.Marshal(m.currentConversation())
	if err != nil {
		m.errorMessage = fmt.Sprintf("Failed to serialize conversation: %v", err)
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.errorMessage = fmt.Sprintf("Clipboard unavailable: %v", err)
		return
	}
	m.infoMessage = "Conversation JSON copied."
}

func (m *model) closeOverlay() {
	m.stage = stageBrowse
	m.searchInput.Blur()
	m.filterInput.Blur()
	m.tagInput.Blur()
}

func (m *model) clearMessages() {
	m.infoMessage = ""
	m.errorMessage = ""
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	m.viewport.SetContent(m.transcriptContent())
	m.viewportDirty = false
}

func trimTag(value string) string {
	return strings.TrimSpace(value)
}

func mergeOption(options []string, tag string) []string {
	for _, existing := range options {
		if existing == tag {
			return options
		}
	}
	return append(options, tag)
}
