package transcript

import (
	"fmt"
	"sort"
	"time"
)

// TagUnread is applied to every conversation when it is first saved.
const TagUnread = "unread"

// Message is one normalized transcript entry. Timestamps stay in their RFC 3339
// wire form; lexicographic order matches chronological order for them, and an
// absent timestamp is the empty string.
type Message struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Conversation is one line of the transcript file. The fetch pipeline writes it
// once; the viewer may later rewrite the file, mutating only Metadata.Tags.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
	Metadata       Metadata  `json:"metadata"`
}

// Metadata carries the derived fields stored alongside a conversation.
type Metadata struct {
	CreatedDate string   `json:"createdDate"`
	Duration    float64  `json:"duration"`
	Tags        []string `json:"tags"`
}

// New builds the persisted form of an accepted conversation. Duration is the
// span between the conversation's createdAt and updatedAt in minutes, kept at
// sub-second precision and deliberately unclamped: a negative value means the
// upstream timestamps were anomalous and is passed through for the operator to
// see.
func New(conversationID, createdAt, updatedAt string, messages []Message) (Conversation, error) {
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Conversation{}, fmt.Errorf("parsing createdAt for %s: %w", conversationID, err)
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return Conversation{}, fmt.Errorf("parsing updatedAt for %s: %w", conversationID, err)
	}
	return Conversation{
		ConversationID: conversationID,
		Messages:       messages,
		Metadata: Metadata{
			CreatedDate: createdAt,
			Duration:    updated.Sub(created).Minutes(),
			Tags:        []string{TagUnread},
		},
	}, nil
}

// HasTag reports whether the conversation carries the given tag.
func (c Conversation) HasTag(tag string) bool {
	for _, existing := range c.Metadata.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// AddTag appends the tag unless it is already present.
func (c *Conversation) AddTag(tag string) {
	if tag == "" || c.HasTag(tag) {
		return
	}
	c.Metadata.Tags = append(c.Metadata.Tags, tag)
}

// RemoveTag deletes the tag, keeping the order of the remaining ones.
func (c *Conversation) RemoveTag(tag string) {
	kept := c.Metadata.Tags[:0]
	for _, existing := range c.Metadata.Tags {
		if existing != tag {
			kept = append(kept, existing)
		}
	}
	c.Metadata.Tags = kept
}

// AllTags returns the sorted union of tags across conversations.
func AllTags(conversations []Conversation) []string {
	seen := map[string]bool{}
	var tags []string
	for _, conv := range conversations {
		for _, tag := range conv.Metadata.Tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}
