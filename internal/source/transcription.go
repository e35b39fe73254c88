package source

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/logging"
	"transcriptsync/internal/services"
	"transcriptsync/internal/services/assemblyai"
	"transcriptsync/internal/transcript"
)

// Transcriber submits and reads transcription jobs.
type Transcriber interface {
	Submit(ctx context.Context, audioURL string, opts assemblyai.Options) (string, error)
	Get(ctx context.Context, jobID string) (assemblyai.Job, error)
}

// AudioResolver turns a video URL into a fetchable audio URL.
type AudioResolver interface {
	AudioURL(ctx context.Context, videoURL string) (string, error)
}

// Transcription fetches diarized transcripts from the transcription service.
type Transcription struct {
	Service Transcriber
	Audio   AudioResolver
	Options assemblyai.Options
	Poller  assemblyai.Poller
	Logger  *slog.Logger
}

// Name implements Source.
func (s *Transcription) Name() string { return "transcription" }

// Items lists every episode with a video reference, newest first.
func (s *Transcription) Items(_ context.Context, idx *catalog.Index) ([]Item, error) {
	return episodeItems(idx, true), nil
}

// Fetch resumes a recorded job or submits a new one. The job id is written
// to the ledger before polling starts. A recorded job the service reports as
// failed is replaced by a fresh submission.
func (s *Transcription) Fetch(ctx context.Context, item Item, progress Progress) (transcript.Artifact, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.logger(), "transcription"))

	jobID, resumed := progress.PendingJob(item.Key)
	if resumed {
		logger.Info("resuming transcription job", logging.String("job_id", jobID))
		art, err := s.wait(ctx, logger, jobID)
		if !errors.Is(err, assemblyai.ErrJobFailed) {
			return art, err
		}
		logging.WarnWithContext(logger, "recorded transcription job failed; resubmitting", "job_resubmitted",
			logging.String("job_id", jobID),
			logging.Error(err))
	}

	ref := item.Episode.VideoRef()
	if ref == "" {
		return transcript.Artifact{}, reasoned(ErrNoVideo, services.ErrSourceUnavailable, "transcription", "resolve", "episode has no video reference", nil)
	}
	audioURL, err := s.Audio.AudioURL(ctx, catalog.WatchURL(ref))
	if err != nil {
		return transcript.Artifact{}, err
	}
	jobID, err = s.Service.Submit(ctx, audioURL, s.Options)
	if err != nil {
		return transcript.Artifact{}, err
	}
	if err := progress.RecordPending(item.Key, jobID, item.Label); err != nil {
		return transcript.Artifact{}, err
	}
	logger.Info("transcription job submitted",
		logging.String("job_id", jobID),
		logging.String(logging.FieldEventType, "job_submitted"))
	return s.wait(ctx, logger, jobID)
}

func (s *Transcription) wait(ctx context.Context, logger *slog.Logger, jobID string) (transcript.Artifact, error) {
	poller := s.Poller
	if poller.OnStatus == nil {
		poller.OnStatus = func(status string, elapsed time.Duration) {
			logger.Debug("transcription job waiting",
				logging.String("job_id", jobID),
				logging.String("status", status),
				logging.Duration("elapsed", elapsed))
		}
	}
	job, err := poller.Wait(ctx, s.Service, jobID)
	if err != nil {
		return transcript.Artifact{}, err
	}

	utterances := make([]transcript.Utterance, 0, len(job.Utterances))
	for _, u := range job.Utterances {
		utterances = append(utterances, transcript.Utterance{Speaker: u.Speaker, Text: u.Text})
	}
	return transcript.Artifact{
		Format:     transcript.FormatDiarized,
		SourceID:   jobID,
		Content:    job.Raw,
		Utterances: utterances,
		Text:       job.Text,
	}, nil
}

func (s *Transcription) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return s.Logger
}
