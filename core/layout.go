package core

import "pkt.systems/wheelhouse/schema"

// Compositor computes screen regions for chrome and content surfaces.
// Layout is a pure function of its input; calling it twice with identical
// inputs yields identical rectangles.
type Compositor struct {
	ToolbarHeight         int
	SidebarWidth          int
	SidebarCollapsedWidth int
	HasSidebar            bool
}

// NewCompositor builds a compositor from service config.
func NewCompositor(cfg schema.ServiceConfig, hasSidebar bool) Compositor {
	return Compositor{
		ToolbarHeight:         cfg.ToolbarHeight,
		SidebarWidth:          cfg.SidebarWidth,
		SidebarCollapsedWidth: cfg.SidebarCollapsedWidth,
		HasSidebar:            hasSidebar,
	}
}

// Layout assigns rectangles. Fullscreen video wins over everything else:
// chrome collapses to zero visible area and content takes the full window.
// Otherwise the sidebar (if present) takes the left edge at full height,
// the toolbar takes the remaining width at the top, and content fills the
// rest.
func (c Compositor) Layout(in schema.LayoutInput) schema.Layout {
	if in.FullscreenVideo {
		return schema.Layout{
			Content: schema.Rect{X: 0, Y: 0, Width: in.Width, Height: in.Height},
		}
	}
	sidebarWidth := 0
	if c.HasSidebar {
		sidebarWidth = c.SidebarWidth
		if in.SidebarCollapsed {
			sidebarWidth = c.SidebarCollapsedWidth
		}
	}
	if sidebarWidth > in.Width {
		sidebarWidth = in.Width
	}
	toolbarHeight := c.ToolbarHeight
	if toolbarHeight > in.Height {
		toolbarHeight = in.Height
	}
	var layout schema.Layout
	if c.HasSidebar {
		layout.Sidebar = schema.Rect{X: 0, Y: 0, Width: sidebarWidth, Height: in.Height}
	}
	layout.Toolbar = schema.Rect{X: sidebarWidth, Y: 0, Width: in.Width - sidebarWidth, Height: toolbarHeight}
	layout.Content = schema.Rect{
		X:      sidebarWidth,
		Y:      toolbarHeight,
		Width:  in.Width - sidebarWidth,
		Height: in.Height - toolbarHeight,
	}
	return layout
}
