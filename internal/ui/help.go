package ui

// Binding is one line of the help overlay
type Binding struct {
	Keys        string
	Description string
}

// EditBindings are the keys available while editing a section
var EditBindings = []Binding{
	{"Enter", "Split item at cursor"},
	{"Backspace", "Join with previous item at start of line"},
	{"↑ ↓", "Move between title and items"},
	{"Tab", "Toolbar"},
	{"Esc  Ctrl+S", "Done"},
}

// HelpScreen manages the help display
type HelpScreen struct {
	visible  bool
	bindings []Binding
}

// NewHelpScreen creates a help screen listing bindings followed by the
// editing keys
func NewHelpScreen(bindings []Binding) *HelpScreen {
	return &HelpScreen{bindings: bindings}
}

// Toggle toggles the help screen visibility
func (h *HelpScreen) Toggle() {
	h.visible = !h.visible
}

// IsVisible returns whether the help screen is visible
func (h *HelpScreen) IsVisible() bool {
	return h.visible
}

// Lines returns the formatted help text
func (h *HelpScreen) Lines() []string {
	var result []string
	result = append(result, "Tasks:")
	for _, b := range h.bindings {
		result = append(result, "  "+PadToWidth(b.Keys, 12)+"  "+b.Description)
	}
	result = append(result, "", "Editing:")
	for _, b := range EditBindings {
		result = append(result, "  "+PadToWidth(b.Keys, 12)+"  "+b.Description)
	}
	return result
}

// Render renders the help screen
func (h *HelpScreen) Render(screen *Screen) {
	if !h.visible {
		return
	}

	width, height := screen.Size()
	style := screen.ItemStyle()
	borderStyle := screen.ToolbarStyle()
	titleStyle := screen.SectionStyle()

	for y := 0; y < height; y++ {
		screen.FillLine(0, y, screen.BackgroundStyle())
	}

	startX, startY := 2, 1
	boxWidth := width - 4
	if boxWidth < 10 {
		return
	}

	screen.SetCell(startX, startY, '┌', borderStyle)
	for i := 1; i < boxWidth-1; i++ {
		screen.SetCell(startX+i, startY, '─', borderStyle)
	}
	screen.SetCell(startX+boxWidth-1, startY, '┐', borderStyle)
	screen.DrawString(startX+2, startY, " Keys (? to close) ", titleStyle)

	y := startY + 1
	for _, line := range h.Lines() {
		if y >= height-2 {
			break
		}
		screen.SetCell(startX, y, '│', borderStyle)
		screen.DrawStringLimited(startX+2, y, line, boxWidth-4, style)
		screen.SetCell(startX+boxWidth-1, y, '│', borderStyle)
		y++
	}

	screen.SetCell(startX, y, '└', borderStyle)
	for i := 1; i < boxWidth-1; i++ {
		screen.SetCell(startX+i, y, '─', borderStyle)
	}
	screen.SetCell(startX+boxWidth-1, y, '┘', borderStyle)
}
