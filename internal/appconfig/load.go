package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file yields the defaults; a present file
// must carry the current config_version.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("downloads_dir", cfg.DownloadsDir)
	v.SetDefault("shell.default_tab_url", cfg.Shell.DefaultTabURL)
	v.SetDefault("shell.default_tab_title", cfg.Shell.DefaultTabTitle)
	v.SetDefault("shell.window_width", cfg.Shell.WindowWidth)
	v.SetDefault("shell.window_height", cfg.Shell.WindowHeight)
	v.SetDefault("shell.disable_sidebar", cfg.Shell.DisableSidebar)
	v.SetDefault("shell.private_window", cfg.Shell.PrivateWindow)
	v.SetDefault("shell.closed_stack_max", cfg.Shell.ClosedStackMax)
	v.SetDefault("shell.menu_timeout_seconds", cfg.Shell.MenuTimeoutSecs)
	v.SetDefault("layout.toolbar_height", cfg.Layout.ToolbarHeight)
	v.SetDefault("layout.sidebar_width", cfg.Layout.SidebarWidth)
	v.SetDefault("layout.sidebar_collapsed_width", cfg.Layout.SidebarCollapsedWidth)
	v.SetDefault("session.save_interval_seconds", cfg.Session.SaveIntervalSecs)
	v.SetDefault("downloads.retention_hours", cfg.Downloads.RetentionHours)
	v.SetDefault("downloads.sweep_interval_minutes", cfg.Downloads.SweepIntervalMins)
	v.SetDefault("downloads.sample_min_ms", cfg.Downloads.SampleMinMillis)
	v.SetDefault("store.network", cfg.Store.Network)
	v.SetDefault("store.address", cfg.Store.Address)
	v.SetDefault("store.call_timeout_seconds", cfg.Store.CallTimeoutSecs)
	v.SetDefault("store.local_dir", cfg.Store.LocalDir)
	v.SetDefault("surface.devtools_url", cfg.Surface.DevToolsURL)
	v.SetDefault("surface.headless", cfg.Surface.Headless)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		// IsSet would see the default; only the file itself counts here.
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
		switch v.GetString("store.network") {
		case "unix", "tcp":
		default:
			return Config{}, fmt.Errorf("unsupported store.network %q", v.GetString("store.network"))
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	return cfg, nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.StateDir = expandEnv(cfg.StateDir)
	cfg.DownloadsDir = expandEnv(cfg.DownloadsDir)
	cfg.Store.Address = expandEnv(cfg.Store.Address)
	cfg.Store.LocalDir = expandEnv(cfg.Store.LocalDir)
	cfg.Surface.DevToolsURL = expandEnv(cfg.Surface.DevToolsURL)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
