package config

// Default values for configuration fields.
const (
	defaultStateDir    = "~/.local/share/transcriptsync"
	defaultOutputDir   = "~/.local/share/transcriptsync/transcripts"
	defaultLogDir      = "~/.local/state/transcriptsync/logs"
	defaultCatalogPath = "~/.config/transcriptsync/episodes.json"
	defaultConfigPath  = "~/.config/transcriptsync/config.toml"

	defaultAssemblyAIBaseURL  = "https://api.assemblyai.com/v2"
	defaultPollInterval       = 10
	defaultMaxWait            = 600
	defaultAssemblyAITimeout  = 60
	defaultYtDlpBinary        = "yt-dlp"
	defaultCaptionLanguage    = "en"
	defaultCaptionsTimeout    = 120
	defaultNtfyTimeout        = 10
	defaultDriveBaseURL       = "https://www.googleapis.com/drive/v3"
	defaultDocsBaseURL        = "https://docs.googleapis.com/v1"
	defaultDriveSearchQuery   = "name contains '.srt'"
	defaultDriveTimeout       = 60
	defaultNotionBaseURL      = "https://api.notion.com/v1"
	defaultNotionVersion      = "2022-06-28"
	defaultEpisodeProperty    = "Episode No."
	defaultLinkProperty       = "Link to transcript"
	defaultHeadingMarker      = "Transcript"
	defaultHeadingText        = "📝 Transcript"
	defaultChunkChars         = 1900
	defaultMaxBlocks          = 100
	defaultNotionRPS          = 3.0
	defaultNotionTimeout      = 60
	defaultMatchThreshold     = 0.6
	defaultMinTranscriptChars = 100
	defaultCheckpointEvery    = 10
	defaultItemDelayMillis    = 400
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	// NotionTextLimit is the hard per-block rich text ceiling imposed by the workspace API.
	NotionTextLimit = 2000
)

// Pipeline names.
const (
	PipelineTranscribe = "transcribe"
	PipelineCaptions   = "captions"
	PipelineDriveSRT   = "drive-srt"
	PipelineDocs       = "docs"
)

// Sink names.
const (
	SinkFile      = "file"
	SinkWorkspace = "workspace"
	SinkDocstore  = "docstore"
)

// Pipelines lists every pipeline name in display order.
func Pipelines() []string {
	return []string{PipelineTranscribe, PipelineCaptions, PipelineDriveSRT, PipelineDocs}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Catalog: Catalog{
			Path: defaultCatalogPath,
		},
		AssemblyAI: AssemblyAI{
			BaseURL:        defaultAssemblyAIBaseURL,
			SpeakerLabels:  true,
			PollInterval:   defaultPollInterval,
			MaxWait:        defaultMaxWait,
			RequestTimeout: defaultAssemblyAITimeout,
			KeepRawJSON:    true,
		},
		Captions: Captions{
			YtDlpBinary: defaultYtDlpBinary,
			Language:    defaultCaptionLanguage,
			Timeout:     defaultCaptionsTimeout,
		},
		Drive: Drive{
			BaseURL:        defaultDriveBaseURL,
			DocsBaseURL:    defaultDocsBaseURL,
			SearchQuery:    defaultDriveSearchQuery,
			RequestTimeout: defaultDriveTimeout,
		},
		Notion: Notion{
			BaseURL:             defaultNotionBaseURL,
			Version:             defaultNotionVersion,
			EpisodeProperty:     defaultEpisodeProperty,
			LinkProperty:        defaultLinkProperty,
			HeadingMarker:       defaultHeadingMarker,
			HeadingText:         defaultHeadingText,
			ChunkChars:          defaultChunkChars,
			MaxBlocksPerRequest: defaultMaxBlocks,
			RequestsPerSecond:   defaultNotionRPS,
			RequestTimeout:      defaultNotionTimeout,
		},
		Pipeline: Pipeline{
			MatchThreshold:     defaultMatchThreshold,
			MinTranscriptChars: defaultMinTranscriptChars,
			CheckpointEvery:    defaultCheckpointEvery,
			ItemDelayMillis:    defaultItemDelayMillis,
			Sinks:              defaultSinks(),
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultSinks() map[string][]string {
	return map[string][]string{
		PipelineTranscribe: {SinkFile},
		PipelineCaptions:   {SinkFile, SinkWorkspace},
		PipelineDriveSRT:   {SinkFile, SinkWorkspace},
		PipelineDocs:       {SinkDocstore, SinkWorkspace},
	}
}
