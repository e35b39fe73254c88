package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"transcriptsync/internal/config"
	"transcriptsync/internal/logging"
	"transcriptsync/internal/services/assemblyai"
	"transcriptsync/internal/services/drive"
	"transcriptsync/internal/services/notion"
	"transcriptsync/internal/services/ytdlp"
	"transcriptsync/internal/sink"
	"transcriptsync/internal/source"
)

// clients are constructed lazily so a pipeline only needs the credentials
// for the services it touches.
type clients struct {
	ctx    context.Context
	cfg    *config.Config
	notion *notion.Client
	drive  *drive.Client
	ytdlp  *ytdlp.Client
}

// NewSpec assembles the named pipeline from configuration.
func NewSpec(ctx context.Context, cfg *config.Config, name string, logger *slog.Logger) (Spec, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &clients{ctx: ctx, cfg: cfg}
	spec := Spec{
		Name:         name,
		SpeakerNames: cfg.AssemblyAI.SpeakerNames,
		MinChars:     cfg.Pipeline.MinTranscriptChars,
	}

	switch name {
	case config.PipelineTranscribe:
		if err := cfg.RequireAssemblyAI(); err != nil {
			return Spec{}, err
		}
		service, err := assemblyai.New(assemblyai.Config{
			APIKey:  cfg.AssemblyAI.APIKey,
			BaseURL: cfg.AssemblyAI.BaseURL,
			Timeout: seconds(cfg.AssemblyAI.RequestTimeout),
		})
		if err != nil {
			return Spec{}, err
		}
		spec.Source = &source.Transcription{
			Service: service,
			Audio:   c.videoTool(),
			Options: assemblyai.Options{
				SpeakerLabels:   cfg.AssemblyAI.SpeakerLabels,
				AutoChapters:    cfg.AssemblyAI.AutoChapters,
				EntityDetection: cfg.AssemblyAI.EntityDetection,
			},
			Poller: assemblyai.Poller{
				Interval: seconds(cfg.AssemblyAI.PollInterval),
				MaxWait:  seconds(cfg.AssemblyAI.MaxWait),
			},
			Logger: logger,
		}
		spec.RetryTransient = true
	case config.PipelineCaptions:
		spec.Source = &source.Captions{Fetcher: c.videoTool(), Language: cfg.Captions.Language}
	case config.PipelineDriveSRT:
		store, err := c.fileStore()
		if err != nil {
			return Spec{}, err
		}
		spec.Source = &source.Files{
			Store:     store,
			Query:     cfg.Drive.SearchQuery,
			Threshold: cfg.Pipeline.MatchThreshold,
			Logger:    logger,
		}
		spec.RetryTransient = true
	case config.PipelineDocs:
		pages, err := c.workspace()
		if err != nil {
			return Spec{}, err
		}
		spec.Source = &source.Workspace{
			Pages:           pages,
			DatabaseID:      cfg.Notion.DatabaseID,
			EpisodeProperty: cfg.Notion.EpisodeProperty,
			Marker:          cfg.Notion.HeadingMarker,
		}
		spec.RetryTransient = true
	default:
		return Spec{}, fmt.Errorf("unknown pipeline %q (want one of %v)", name, config.Pipelines())
	}

	for _, sinkName := range cfg.SinksFor(name) {
		s, err := c.sink(name, sinkName, logger)
		if err != nil {
			return Spec{}, fmt.Errorf("pipeline %s: %w", name, err)
		}
		spec.Sinks = append(spec.Sinks, s)
	}
	if len(spec.Sinks) == 0 {
		return Spec{}, fmt.Errorf("pipeline %s has no sinks configured", name)
	}
	return spec, nil
}

func (c *clients) sink(pipeline, name string, logger *slog.Logger) (sink.Sink, error) {
	switch name {
	case config.SinkFile:
		return &sink.File{
			Dir:     filepath.Join(c.cfg.Paths.OutputDir, pipeline),
			KeepRaw: c.cfg.AssemblyAI.KeepRawJSON,
		}, nil
	case config.SinkWorkspace:
		pages, err := c.workspace()
		if err != nil {
			return nil, err
		}
		return &sink.Workspace{
			Pages:           pages,
			DatabaseID:      c.cfg.Notion.DatabaseID,
			EpisodeProperty: c.cfg.Notion.EpisodeProperty,
			Marker:          c.cfg.Notion.HeadingMarker,
			Heading:         c.cfg.Notion.HeadingText,
			ChunkChars:      c.cfg.Notion.ChunkChars,
			MaxBlocks:       c.cfg.Notion.MaxBlocksPerRequest,
			LinkProperty:    c.cfg.Notion.LinkProperty,
			Logger:          logger,
		}, nil
	case config.SinkDocstore:
		store, err := c.fileStore()
		if err != nil {
			return nil, err
		}
		return &sink.Docstore{Store: store, FolderID: c.cfg.Drive.FolderID}, nil
	default:
		return nil, fmt.Errorf("unknown sink %q", name)
	}
}

func (c *clients) videoTool() *ytdlp.Client {
	if c.ytdlp == nil {
		c.ytdlp = ytdlp.New(c.cfg.Captions.YtDlpBinary, seconds(c.cfg.Captions.Timeout))
	}
	return c.ytdlp
}

func (c *clients) workspace() (*notion.Client, error) {
	if c.notion != nil {
		return c.notion, nil
	}
	if err := c.cfg.RequireNotion(); err != nil {
		return nil, err
	}
	client, err := notion.New(notion.Config{
		APIKey:            c.cfg.Notion.APIKey,
		BaseURL:           c.cfg.Notion.BaseURL,
		Version:           c.cfg.Notion.Version,
		Timeout:           seconds(c.cfg.Notion.RequestTimeout),
		RequestsPerSecond: c.cfg.Notion.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	c.notion = client
	return client, nil
}

func (c *clients) fileStore() (*drive.Client, error) {
	if c.drive != nil {
		return c.drive, nil
	}
	if err := c.cfg.RequireDrive(); err != nil {
		return nil, err
	}
	client, err := drive.New(c.ctx, drive.Config{
		AccessToken: c.cfg.Drive.AccessToken,
		BaseURL:     c.cfg.Drive.BaseURL,
		DocsBaseURL: c.cfg.Drive.DocsBaseURL,
		Timeout:     seconds(c.cfg.Drive.RequestTimeout),
	})
	if err != nil {
		return nil, err
	}
	c.drive = client
	return client, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
