package schema

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ServiceConfig defines defaults and limits for the shell core.
type ServiceConfig struct {
	// StateDir holds the local session snapshot and related state.
	StateDir string
	// DownloadsDir is where finished files land; save paths are made
	// collision-free inside it.
	DownloadsDir string
	// DefaultTabURL is the destination for fresh tabs.
	DefaultTabURL string
	// DefaultTabTitle is the display title before the surface reports one.
	DefaultTabTitle string

	// WindowWidth and WindowHeight seed the compositor before the host
	// reports a real size.
	WindowWidth  int
	WindowHeight int

	ToolbarHeight         int
	SidebarWidth          int
	SidebarCollapsedWidth int
	// DisableSidebar removes the sidebar chrome surface entirely.
	DisableSidebar bool

	ClosedStackMax        int
	SessionSaveInterval   time.Duration
	DownloadRetention     time.Duration
	DownloadSweepInterval time.Duration
	// DownloadSampleMin is the minimum spacing between speed/ETA samples.
	DownloadSampleMin time.Duration
	MenuTimeout       time.Duration
	StoreTimeout      time.Duration

	// PrivateWindow marks every surface in this shell as private.
	PrivateWindow bool
}

// Default dimensions for chrome surfaces, in logical pixels.
const (
	DefaultToolbarHeight         = 88
	DefaultSidebarWidth          = 240
	DefaultSidebarCollapsedWidth = 48
)

// DefaultClosedStackMax bounds the closed-tab recall stack.
const DefaultClosedStackMax = 20

// DefaultTabURL is the built-in new-tab destination.
const DefaultTabURL = "about:newtab"

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ServiceConfig{}, err
		}
		cfg.StateDir = filepath.Join(home, ".wheelhouse", "state")
	}
	if cfg.DownloadsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ServiceConfig{}, err
		}
		cfg.DownloadsDir = filepath.Join(home, "Downloads")
	}
	if cfg.DefaultTabURL == "" {
		cfg.DefaultTabURL = DefaultTabURL
	}
	if cfg.DefaultTabTitle == "" {
		cfg.DefaultTabTitle = "New Tab"
	}
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 1280
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 800
	}
	if cfg.ToolbarHeight <= 0 {
		cfg.ToolbarHeight = DefaultToolbarHeight
	}
	if cfg.SidebarWidth <= 0 {
		cfg.SidebarWidth = DefaultSidebarWidth
	}
	if cfg.SidebarCollapsedWidth <= 0 {
		cfg.SidebarCollapsedWidth = DefaultSidebarCollapsedWidth
	}
	if cfg.SidebarCollapsedWidth > cfg.SidebarWidth {
		return ServiceConfig{}, errors.New("collapsed sidebar width must not exceed expanded width")
	}
	if cfg.ClosedStackMax <= 0 {
		cfg.ClosedStackMax = DefaultClosedStackMax
	}
	if cfg.SessionSaveInterval <= 0 {
		cfg.SessionSaveInterval = 30 * time.Second
	}
	if cfg.DownloadRetention <= 0 {
		cfg.DownloadRetention = 24 * time.Hour
	}
	if cfg.DownloadSweepInterval <= 0 {
		cfg.DownloadSweepInterval = time.Hour
	}
	if cfg.DownloadSampleMin <= 0 {
		cfg.DownloadSampleMin = 500 * time.Millisecond
	}
	if cfg.MenuTimeout <= 0 {
		cfg.MenuTimeout = 10 * time.Second
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	return cfg, nil
}
