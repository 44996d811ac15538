package config

import "curator/internal/scoring"

const (
	defaultStateDir           = "~/.local/share/curator/state"
	defaultLogDir             = "~/.local/share/curator/logs"
	defaultSocketPath         = "~/.local/share/curator/curatord.sock"
	defaultAPIBind            = "127.0.0.1:7615"
	defaultTMDBLanguage       = "en-US"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
	defaultSyncInterval       = 360
	defaultSyncParallelism    = 4
	defaultCollectionWorkers  = 2
	defaultItemTimeoutSeconds = 15
	defaultHistoryRetainDays  = 90
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
			SocketPath: defaultSocketPath,
			APIBind:    defaultAPIBind,
		},
		TMDB: TMDB{
			Language: defaultTMDBLanguage,
			BaseURL:  defaultTMDBBaseURL,
		},
		Scoring: scoring.DefaultConfig(),
		Sync: Sync{
			IntervalMinutes:       defaultSyncInterval,
			Parallelism:           defaultSyncParallelism,
			CollectionParallelism: defaultCollectionWorkers,
			ItemTimeoutSeconds:    defaultItemTimeoutSeconds,
			HistoryRetainDays:     defaultHistoryRetainDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			SyncStarted:    false,
			SyncCompleted:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
