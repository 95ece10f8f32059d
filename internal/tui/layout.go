package tui

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{viewportWidth: 80, viewportHeight: 20}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height

	inner := width - 2
	if inner > maxContentWidth {
		inner = maxContentWidth
	}
	if inner < minViewportWidth {
		inner = minViewportWidth
	}
	l.viewportWidth = inner

	usable := height - headerHeight - footerHeight
	if usable < 5 {
		usable = 5
	}
	l.viewportHeight = usable
}
