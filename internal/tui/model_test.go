package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/convoscout/internal/transcript"
)

func fixtureConversations() []transcript.Conversation {
	return []transcript.Conversation{
		{
			ConversationID: "conv-1",
			Messages: []transcript.Message{
				{Type: "text", Direction: transcript.DirectionIncoming, Timestamp: "2025-02-23T09:00:01Z", Text: "I need help with my order"},
				{Type: "text", Direction: transcript.DirectionOutgoing, Timestamp: "2025-02-23T09:00:05Z", Text: "Sure, what is the order number?"},
			},
			Metadata: transcript.Metadata{CreatedDate: "2025-02-23T09:00:00Z", Duration: 5, Tags: []string{transcript.TagUnread}},
		},
		{
			ConversationID: "conv-2",
			Messages: []transcript.Message{
				{Type: "text", Direction: transcript.DirectionIncoming, Timestamp: "2025-02-24T10:00:00Z", Text: "hello?"},
			},
			Metadata: transcript.Metadata{CreatedDate: "2025-02-24T10:00:00Z", Duration: 0.5, Tags: []string{transcript.TagUnread, "billing"}},
		},
		{
			ConversationID: "conv-3",
			Messages: []transcript.Message{
				{Type: "image", Direction: transcript.DirectionIncoming, Timestamp: "2025-02-25T11:00:00Z", Text: "[image message]"},
			},
			Metadata: transcript.Metadata{CreatedDate: "2025-02-25T11:00:00Z", Duration: 2, Tags: []string{"billing"}},
		},
	}
}

func newTestModel(t *testing.T) *model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcripts.jsonl")
	conversations := fixtureConversations()
	if err := transcript.Rewrite(path, conversations); err != nil {
		t.Fatalf("seeding transcript file: %v", err)
	}
	m := New(Config{TranscriptPath: path, Conversations: conversations}).(*model)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	return m
}

func keyMsg(value string) tea.KeyMsg {
	switch value {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

func TestNavigationBetweenConversations(t *testing.T) {
	m := newTestModel(t)
	if m.index != 0 {
		t.Fatalf("initial index = %d", m.index)
	}

	m.Update(keyMsg("l"))
	if m.index != 1 {
		t.Fatalf("index after next = %d, want 1", m.index)
	}
	m.Update(keyMsg("h"))
	if m.index != 0 {
		t.Fatalf("index after prev = %d, want 0", m.index)
	}
	m.Update(keyMsg("h"))
	if m.index != 0 {
		t.Fatalf("prev at first conversation should stay put, got %d", m.index)
	}
	m.Update(keyMsg("l"))
	m.Update(keyMsg("l"))
	m.Update(keyMsg("l"))
	if m.index != 2 {
		t.Fatalf("next at last conversation should stay put, got %d", m.index)
	}
}

func TestSearchJumpsToConversationByID(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("f"))
	if m.stage != stageSearch {
		t.Fatalf("stage after f = %v, want search", m.stage)
	}
	m.searchInput.SetValue("conv-3")
	m.Update(keyMsg("enter"))

	if m.stage != stageBrowse {
		t.Fatalf("stage after search = %v, want browse", m.stage)
	}
	if m.index != 2 {
		t.Fatalf("index after search = %d, want 2", m.index)
	}
	if m.errorMessage != "" {
		t.Fatalf("unexpected error message %q", m.errorMessage)
	}
}

func TestSearchMissSurfacesError(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("f"))
	m.searchInput.SetValue("no-such-id")
	m.Update(keyMsg("enter"))

	if m.index != 0 {
		t.Fatalf("index should not move on a miss, got %d", m.index)
	}
	if m.errorMessage != "Conversation not found" {
		t.Fatalf("error message = %q", m.errorMessage)
	}
}

func TestFilterByTagOffersMatchesAndJumps(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("O"))
	if m.stage != stageFilter {
		t.Fatalf("stage after O = %v, want filter", m.stage)
	}
	m.filterInput.SetValue("billing")
	m.Update(keyMsg("enter"))

	if m.stage != stageFilterPick {
		t.Fatalf("stage after filter = %v, want pick", m.stage)
	}
	if len(m.filterMatches) != 2 || m.filterMatches[0] != 1 || m.filterMatches[1] != 2 {
		t.Fatalf("filter matches = %v, want [1 2]", m.filterMatches)
	}

	m.Update(keyMsg("j"))
	m.Update(keyMsg("enter"))
	if m.stage != stageBrowse || m.index != 2 {
		t.Fatalf("expected to land on conversation 2, got stage=%v index=%d", m.stage, m.index)
	}
}

func TestFilterWithoutMatchesReportsAndStaysPut(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("O"))
	m.filterInput.SetValue("nonexistent")
	m.Update(keyMsg("enter"))

	if m.stage != stageBrowse {
		t.Fatalf("stage = %v, want browse after empty filter result", m.stage)
	}
	if !strings.Contains(m.errorMessage, "nonexistent") {
		t.Fatalf("error message = %q", m.errorMessage)
	}
}

func TestTagManagerToggleAndCommitRewritesFile(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("o"))
	if m.stage != stageTags {
		t.Fatalf("stage after o = %v, want tags", m.stage)
	}
	// Options are the sorted union: [billing, unread].
	if len(m.tagOptions) != 2 || m.tagOptions[0] != "billing" || m.tagOptions[1] != "unread" {
		t.Fatalf("tag options = %v", m.tagOptions)
	}

	m.Update(keyMsg(" ")) // toggle billing on for conv-1
	m.Update(keyMsg("enter"))

	if m.stage != stageBrowse {
		t.Fatalf("stage after commit = %v, want browse", m.stage)
	}
	if !m.conversations[0].HasTag("billing") {
		t.Fatal("billing tag not applied in memory")
	}

	saved, err := transcript.Load(m.config.TranscriptPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !saved[0].HasTag("billing") || !saved[0].HasTag(transcript.TagUnread) {
		t.Fatalf("rewritten tags = %v", saved[0].Metadata.Tags)
	}
	if saved[1].ConversationID != "conv-2" || len(saved) != 3 {
		t.Fatalf("rewrite must keep every conversation: %d records", len(saved))
	}
}

func TestTagManagerEscRestoresTags(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("o"))
	m.Update(keyMsg(" ")) // toggle billing on
	m.Update(keyMsg("esc"))

	if m.stage != stageBrowse {
		t.Fatalf("stage after esc = %v", m.stage)
	}
	if m.conversations[0].HasTag("billing") {
		t.Fatalf("esc should discard toggles, tags = %v", m.conversations[0].Metadata.Tags)
	}
}

func TestCreateNewTagFromManager(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("o"))
	m.Update(keyMsg("j")) // billing -> unread
	m.Update(keyMsg("j")) // unread -> create-new entry
	m.Update(keyMsg(" "))
	if m.stage != stageTagEntry {
		t.Fatalf("stage = %v, want tag entry", m.stage)
	}

	m.tagInput.SetValue("  escalated ")
	m.Update(keyMsg("enter"))

	if m.stage != stageTags {
		t.Fatalf("stage after new tag = %v, want tags", m.stage)
	}
	if !m.conversations[0].HasTag("escalated") {
		t.Fatalf("new tag not applied, tags = %v", m.conversations[0].Metadata.Tags)
	}
	if m.tagOptions[len(m.tagOptions)-1] != "escalated" {
		t.Fatalf("new tag not offered in options: %v", m.tagOptions)
	}
}

func TestToggleUnreadPersists(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("r"))
	if m.conversations[0].HasTag(transcript.TagUnread) {
		t.Fatal("unread tag should be removed by first toggle")
	}
	saved, err := transcript.Load(m.config.TranscriptPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if saved[0].HasTag(transcript.TagUnread) {
		t.Fatal("unread removal not persisted")
	}

	m.Update(keyMsg("r"))
	if !m.conversations[0].HasTag(transcript.TagUnread) {
		t.Fatal("second toggle should restore the unread tag")
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t)

	if view := m.View(); strings.Contains(view, "Keyboard Shortcuts") {
		t.Fatal("help should be hidden by default")
	}
	m.Update(keyMsg("?"))
	if view := m.View(); !strings.Contains(view, "Keyboard Shortcuts") {
		t.Fatal("help did not appear after toggling")
	}
	m.Update(keyMsg("?"))
	if view := m.View(); strings.Contains(view, "Keyboard Shortcuts") {
		t.Fatal("help should hide again after second toggle")
	}
}

func TestViewRendersTranscript(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	if !strings.Contains(view, "Conversation 1/3 | ID: conv-1") {
		t.Fatalf("header missing from view:\n%s", view)
	}
	if !strings.Contains(view, "I need help with my order") {
		t.Fatalf("incoming message missing from view:\n%s", view)
	}
	if !strings.Contains(view, "Bot: ") || !strings.Contains(view, "User: ") {
		t.Fatalf("speaker prefixes missing from view:\n%s", view)
	}
	if !strings.Contains(view, chatEndMarker) {
		t.Fatalf("end marker missing from view:\n%s", view)
	}
}

func TestViewShowsPlaceholderForNonTextMessage(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("f"))
	m.searchInput.SetValue("conv-3")
	m.Update(keyMsg("enter"))

	if view := m.View(); !strings.Contains(view, "[image message]") {
		t.Fatalf("placeholder missing from view:\n%s", view)
	}
}
