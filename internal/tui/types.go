package tui

type stage int

const (
	stageBrowse stage = iota
	stageSearch
	stageFilter
	stageFilterPick
	stageTags
	stageTagEntry
)

const (
	minViewportWidth = 40
	maxContentWidth  = 100
	headerHeight     = 3
	footerHeight     = 2
)

const chatEndMarker = "<<< CHAT END >>>"

const createTagEntry = "+ Create new tag"

const (
	searchPlaceholder = "Conversation ID…"
	filterPlaceholder = "Tag name…"
	tagPlaceholder    = "New tag name…"
)
