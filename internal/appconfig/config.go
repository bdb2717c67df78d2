package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/wheelhouse/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int             `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string          `mapstructure:"state_dir" yaml:"state_dir"`
	DownloadsDir  string          `mapstructure:"downloads_dir" yaml:"downloads_dir"`
	Shell         ShellConfig     `mapstructure:"shell" yaml:"shell"`
	Layout        LayoutConfig    `mapstructure:"layout" yaml:"layout"`
	Session       SessionConfig   `mapstructure:"session" yaml:"session"`
	Downloads     DownloadsConfig `mapstructure:"downloads" yaml:"downloads"`
	Store         StoreConfig     `mapstructure:"store" yaml:"store"`
	Surface       SurfaceConfig   `mapstructure:"surface" yaml:"surface"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ShellConfig controls core shell behavior.
type ShellConfig struct {
	DefaultTabURL   string `mapstructure:"default_tab_url" yaml:"default_tab_url"`
	DefaultTabTitle string `mapstructure:"default_tab_title" yaml:"default_tab_title"`
	WindowWidth     int    `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight    int    `mapstructure:"window_height" yaml:"window_height"`
	DisableSidebar  bool   `mapstructure:"disable_sidebar" yaml:"disable_sidebar"`
	PrivateWindow   bool   `mapstructure:"private_window" yaml:"private_window"`
	ClosedStackMax  int    `mapstructure:"closed_stack_max" yaml:"closed_stack_max"`
	MenuTimeoutSecs int    `mapstructure:"menu_timeout_seconds" yaml:"menu_timeout_seconds"`
}

// LayoutConfig controls chrome surface dimensions in logical pixels.
type LayoutConfig struct {
	ToolbarHeight         int `mapstructure:"toolbar_height" yaml:"toolbar_height"`
	SidebarWidth          int `mapstructure:"sidebar_width" yaml:"sidebar_width"`
	SidebarCollapsedWidth int `mapstructure:"sidebar_collapsed_width" yaml:"sidebar_collapsed_width"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	SaveIntervalSecs int `mapstructure:"save_interval_seconds" yaml:"save_interval_seconds"`
}

// DownloadsConfig controls download tracking and retention.
type DownloadsConfig struct {
	RetentionHours    int `mapstructure:"retention_hours" yaml:"retention_hours"`
	SweepIntervalMins int `mapstructure:"sweep_interval_minutes" yaml:"sweep_interval_minutes"`
	SampleMinMillis   int `mapstructure:"sample_min_ms" yaml:"sample_min_ms"`
}

// StoreConfig configures the remote profile store connection and the local
// fallback store.
type StoreConfig struct {
	Network         string `mapstructure:"network" yaml:"network"`
	Address         string `mapstructure:"address" yaml:"address"`
	CallTimeoutSecs int    `mapstructure:"call_timeout_seconds" yaml:"call_timeout_seconds"`
	// LocalDir holds the SQLite fallback store used when the remote store
	// is unreachable. Empty disables the fallback.
	LocalDir string `mapstructure:"local_dir" yaml:"local_dir"`
}

// SurfaceConfig configures the rendering engine connection.
type SurfaceConfig struct {
	// DevToolsURL is the engine's DevTools websocket endpoint. Empty lets
	// the surface factory launch its own engine instance.
	DevToolsURL string `mapstructure:"devtools_url" yaml:"devtools_url"`
	Headless    bool   `mapstructure:"headless" yaml:"headless"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".wheelhouse", "state"),
		DownloadsDir:  filepath.Join(home, "Downloads"),
		Shell: ShellConfig{
			DefaultTabURL:   schema.DefaultTabURL,
			DefaultTabTitle: "New Tab",
			WindowWidth:     1280,
			WindowHeight:    800,
			ClosedStackMax:  schema.DefaultClosedStackMax,
			MenuTimeoutSecs: 10,
		},
		Layout: LayoutConfig{
			ToolbarHeight:         schema.DefaultToolbarHeight,
			SidebarWidth:          schema.DefaultSidebarWidth,
			SidebarCollapsedWidth: schema.DefaultSidebarCollapsedWidth,
		},
		Session: SessionConfig{
			SaveIntervalSecs: 30,
		},
		Downloads: DownloadsConfig{
			RetentionHours:    24,
			SweepIntervalMins: 60,
			SampleMinMillis:   500,
		},
		Store: StoreConfig{
			Network:         "unix",
			Address:         filepath.Join(home, ".wheelhouse", "store.sock"),
			CallTimeoutSecs: 5,
			LocalDir:        filepath.Join(home, ".wheelhouse", "profile"),
		},
		Surface: SurfaceConfig{
			DevToolsURL: "",
			Headless:    false,
		},
	}, nil
}

// ServiceConfig maps the application config onto the core service config.
func (c Config) ServiceConfig() schema.ServiceConfig {
	return schema.ServiceConfig{
		StateDir:              c.StateDir,
		DownloadsDir:          c.DownloadsDir,
		DefaultTabURL:         c.Shell.DefaultTabURL,
		DefaultTabTitle:       c.Shell.DefaultTabTitle,
		WindowWidth:           c.Shell.WindowWidth,
		WindowHeight:          c.Shell.WindowHeight,
		ToolbarHeight:         c.Layout.ToolbarHeight,
		SidebarWidth:          c.Layout.SidebarWidth,
		SidebarCollapsedWidth: c.Layout.SidebarCollapsedWidth,
		DisableSidebar:        c.Shell.DisableSidebar,
		ClosedStackMax:        c.Shell.ClosedStackMax,
		SessionSaveInterval:   time.Duration(c.Session.SaveIntervalSecs) * time.Second,
		DownloadRetention:     time.Duration(c.Downloads.RetentionHours) * time.Hour,
		DownloadSweepInterval: time.Duration(c.Downloads.SweepIntervalMins) * time.Minute,
		DownloadSampleMin:     time.Duration(c.Downloads.SampleMinMillis) * time.Millisecond,
		MenuTimeout:           time.Duration(c.Shell.MenuTimeoutSecs) * time.Second,
		StoreTimeout:          time.Duration(c.Store.CallTimeoutSecs) * time.Second,
		PrivateWindow:         c.Shell.PrivateWindow,
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".wheelhouse", "config.yaml"), nil
}
