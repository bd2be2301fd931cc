package config

const (
	defaultStoreRoot          = "~/.local/share/packwright/episodes"
	defaultLogDir             = "~/.local/share/packwright/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
	defaultAssetsDir          = "Full Length Assets"
	defaultArtworkDir         = "Podcast Artwork"
	defaultSocialDir          = "Social Assets"
	defaultGuestPackagePrefix = "Guest Package"
	defaultArchiveDir         = "_Archive"
	defaultTaskTimeout        = 120
	defaultFanInTimeout       = 300
	defaultMaxConcurrent      = 4
	defaultRetryAttempts      = 3
	defaultRetryBackoffMS     = 250
	defaultResearchTimeout    = 30
	defaultResearchMaxQueries = 8
	defaultRunPollInterval    = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StoreRoot: defaultStoreRoot,
			LogDir:    defaultLogDir,
		},
		Layout: Layout{
			AssetsDir:          defaultAssetsDir,
			ArtworkDir:         defaultArtworkDir,
			SocialDir:          defaultSocialDir,
			GuestPackagePrefix: defaultGuestPackagePrefix,
			ArchiveDir:         defaultArchiveDir,
		},
		Analysis: Analysis{
			TaskTimeout:   defaultTaskTimeout,
			FanInTimeout:  defaultFanInTimeout,
			MaxConcurrent: defaultMaxConcurrent,
		},
		DocStore: DocStore{
			RetryAttempts:  defaultRetryAttempts,
			RetryBackoffMS: defaultRetryBackoffMS,
		},
		Research: Research{
			Timeout:    defaultResearchTimeout,
			MaxQueries: defaultResearchMaxQueries,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Approvals:      true,
			Completions:    true,
			Errors:         true,
		},
		Workflow: Workflow{
			RunPollInterval:    defaultRunPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
