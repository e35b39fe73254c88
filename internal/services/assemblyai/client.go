package assemblyai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"transcriptsync/internal/services"
	"transcriptsync/internal/services/httpapi"
)

const defaultBaseURL = "https://api.assemblyai.com/v2"

// ErrJobFailed marks a job the service finished with status "error".
var ErrJobFailed = errors.New("transcription job failed")

// Job statuses reported by the service.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Config captures the runtime settings required to talk to the service.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Options are the per-job submission flags.
type Options struct {
	SpeakerLabels   bool
	AutoChapters    bool
	EntityDetection bool
}

// Utterance is one diarized speaker turn.
type Utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
}

// Job is the decoded view of a transcript job.
type Job struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Text       string      `json:"text"`
	Error      string      `json:"error"`
	Utterances []Utterance `json:"utterances"`
	// Raw holds the response document as returned.
	Raw json.RawMessage `json:"-"`
}

// Done reports whether the job reached a terminal status.
func (j Job) Done() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}

// Client talks to the transcription API.
type Client struct {
	http *httpapi.Client
}

// New constructs a client.
func New(cfg Config, opts ...httpapi.Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, services.Wrap(services.ErrConfiguration, "assemblyai", "new client", "api key required", nil)
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	base := []httpapi.Option{httpapi.WithHeader("Authorization", key)}
	return &Client{http: httpapi.New("assemblyai", baseURL, cfg.Timeout, append(base, opts...)...)}, nil
}

type submitRequest struct {
	AudioURL        string `json:"audio_url"`
	SpeakerLabels   bool   `json:"speaker_labels"`
	AutoChapters    bool   `json:"auto_chapters,omitempty"`
	EntityDetection bool   `json:"entity_detection,omitempty"`
}

// Submit starts a transcription job for audioURL and returns its id.
func (c *Client) Submit(ctx context.Context, audioURL string, opts Options) (string, error) {
	audioURL = strings.TrimSpace(audioURL)
	if audioURL == "" {
		return "", services.Wrap(services.ErrValidation, "assemblyai", "submit", "audio url required", nil)
	}
	req := submitRequest{
		AudioURL:        audioURL,
		SpeakerLabels:   opts.SpeakerLabels,
		AutoChapters:    opts.AutoChapters,
		EntityDetection: opts.EntityDetection,
	}
	var job Job
	if err := c.http.DoJSON(ctx, http.MethodPost, "/transcript", nil, req, &job); err != nil {
		return "", err
	}
	if strings.TrimSpace(job.ID) == "" {
		return "", services.Wrap(services.ErrTransient, "assemblyai", "submit", "response missing job id", nil)
	}
	return job.ID, nil
}

// Get fetches the current state of a job.
func (c *Client) Get(ctx context.Context, jobID string) (Job, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return Job{}, services.Wrap(services.ErrValidation, "assemblyai", "get", "job id required", nil)
	}
	data, err := c.http.Get(ctx, "/transcript/"+url.PathEscape(jobID), nil)
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, services.Wrap(services.ErrTransient, "assemblyai", "get", "decode response", err)
	}
	job.Raw = json.RawMessage(data)
	return job, nil
}

// Poller waits for a job to reach a terminal status.
type Poller struct {
	Interval time.Duration
	MaxWait  time.Duration
	// Sleep waits between polls; tests replace it.
	Sleep func(context.Context, time.Duration) error
	// OnStatus is called after every non-terminal poll.
	OnStatus func(status string, elapsed time.Duration)
}

// JobReader fetches the current state of a job.
type JobReader interface {
	Get(ctx context.Context, jobID string) (Job, error)
}

// Wait polls until the job completes. A job the service rejects is a
// validation error, so it is not resubmitted without an operator; running
// past MaxWait is a timeout error and the job id stays valid for a later
// resume.
func (p Poller) Wait(ctx context.Context, client JobReader, jobID string) (Job, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	maxWait := p.MaxWait
	if maxWait <= 0 {
		maxWait = 600 * time.Second
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var elapsed time.Duration
	for {
		job, err := client.Get(ctx, jobID)
		if err != nil {
			return Job{}, err
		}
		switch job.Status {
		case StatusCompleted:
			return job, nil
		case StatusError:
			msg := strings.TrimSpace(job.Error)
			if msg == "" {
				msg = "job reported error"
			}
			return job, services.Wrap(services.ErrValidation, "assemblyai", "poll", "job "+jobID, fmt.Errorf("%w: %s", ErrJobFailed, msg))
		}
		if p.OnStatus != nil {
			p.OnStatus(job.Status, elapsed)
		}
		if elapsed+interval > maxWait {
			return job, services.Wrap(services.ErrTimeout, "assemblyai", "poll", "job "+jobID+" still "+job.Status+" after "+maxWait.String(), nil)
		}
		if err := sleep(ctx, interval); err != nil {
			return job, err
		}
		elapsed += interval
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
