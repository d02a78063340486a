package config

const (
	defaultDataDir            = "~/.local/share/quill"
	defaultLogDir             = "~/.local/share/quill/logs"
	defaultExportDir          = "~/.local/share/quill/export"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultQueuePollInterval  = 10
	defaultFetchInterval      = 1800
	defaultErrorRetryInterval = 30
	defaultGeneratorBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultGeneratorModel     = "google/gemini-3-flash-preview"
	defaultGeneratorTimeout   = 60
	defaultPosterBaseURL      = "https://api.x.com"
	defaultPosterTimeout      = 30
	defaultFeedTimeout        = 30
	defaultGitHubLanguage     = "go"
	defaultGitHubMinStars     = 50
	defaultMinScoreThreshold  = 5
	defaultMaxArticlesPerRun  = 5
	defaultTitleSimilarity    = 0.85
	defaultContentSimilarity  = 0.75
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Automation: Automation{
			AutoMode:                   true,
			AutoPostEnabled:            false,
			ManualApprovalRequired:     true,
			MinScoreThreshold:          defaultMinScoreThreshold,
			MaxArticlesPerRun:          defaultMaxArticlesPerRun,
			EnableDuplicateDetection:   true,
			TitleSimilarityThreshold:   defaultTitleSimilarity,
			ContentSimilarityThreshold: defaultContentSimilarity,
		},
		Generator: Generator{
			BaseURL:        defaultGeneratorBaseURL,
			Model:          defaultGeneratorModel,
			TimeoutSeconds: defaultGeneratorTimeout,
		},
		Poster: Poster{
			BaseURL:        defaultPosterBaseURL,
			TimeoutSeconds: defaultPosterTimeout,
		},
		Feeds: Feeds{
			GitHubLanguage: defaultGitHubLanguage,
			GitHubMinStars: defaultGitHubMinStars,
			RequestTimeout: defaultFeedTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Queue:          true,
			Posts:          true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			FetchInterval:      defaultFetchInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
