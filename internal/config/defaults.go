package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultAPIBind        = "127.0.0.1:7676"
	defaultDebounceMs     = 400
	defaultPollIntervalMs = 100
	defaultSettleTimeoutS = 30
	defaultFallbackExt    = ".png"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultEventBuffer    = 256
)

func defaultExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".webp"}
}

func defaultDBPath() string {
	return filepath.Join(xdg.DataHome, "shotrouter", "shotrouter.db")
}

func defaultLogDir() string {
	return filepath.Join(xdg.DataHome, "shotrouter", "logs")
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DBPath:  defaultDBPath(),
			LogDir:  defaultLogDir(),
			APIBind: defaultAPIBind,
		},
		Watcher: Watcher{
			DebounceMs:     defaultDebounceMs,
			PollIntervalMs: defaultPollIntervalMs,
			SettleTimeoutS: defaultSettleTimeoutS,
			Extensions:     defaultExtensions(),
			FallbackExt:    defaultFallbackExt,
		},
		Notifications: Notifications{
			BufferSize: defaultEventBuffer,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
