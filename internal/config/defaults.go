package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir: DefaultBaseDir(),

		Store: StoreConfig{
			Backend: "sqlite",
		},

		Progress: ProgressConfig{
			CompletionThreshold: 0.95,
			SampleInterval:      time.Second,
			FlushDebounce:       400 * time.Millisecond,
			RecentLimit:         5,
		},

		Ranking: RankingConfig{
			Backend: "none",
			RedisDB: 0,
		},

		Notify: NotifyConfig{
			Subject: "vidtally.notices",
		},

		Log: LogConfig{
			Level: "info",
		},
	}
}
