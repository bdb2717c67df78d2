package schema

// SessionTab is a single open page as stored in a session snapshot.
type SessionTab struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// SessionSnapshot is the persisted working set of open pages, in display
// order. The last entry becomes the active tab on restore.
type SessionSnapshot struct {
	Tabs []SessionTab `json:"tabs"`
}

// Empty reports whether the snapshot holds no restorable pages.
func (s SessionSnapshot) Empty() bool {
	return len(s.Tabs) == 0
}
