package schema

// MenuAction identifies a context menu entry.
type MenuAction string

const (
	// MenuCopy copies the current selection.
	MenuCopy MenuAction = "copy"
	// MenuCut cuts the current selection.
	MenuCut MenuAction = "cut"
	// MenuPaste pastes the clipboard contents.
	MenuPaste MenuAction = "paste"
	// MenuSelectAll selects the surface's full content.
	MenuSelectAll MenuAction = "select-all"
	// MenuInspect opens the inspector for the surface.
	MenuInspect MenuAction = "inspect"
)

// MenuRequest describes a context menu requested on a surface, with the
// pointer position in that surface's local coordinate space.
type MenuRequest struct {
	At      Point
	Actions []MenuAction
}

// MenuChoice reports the user's selection from a rendered menu.
type MenuChoice struct {
	Action MenuAction
	// Dismissed is set when the menu was closed without a selection.
	Dismissed bool
}
