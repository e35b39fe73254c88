package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"transcriptsync/internal/services"
)

// Runner executes a command and returns its stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Track is a downloaded caption track.
type Track struct {
	Content string
	// Format is the file extension of the track, "vtt" or "srt".
	Format string
}

// Client wraps the yt-dlp binary.
type Client struct {
	binary  string
	timeout time.Duration
	run     Runner
}

// Option customizes the client.
type Option func(*Client)

// WithRunner injects a custom command runner (primarily for tests).
func WithRunner(r Runner) Option {
	return func(c *Client) {
		if r != nil {
			c.run = r
		}
	}
}

// New constructs a client for the given binary. timeout bounds each invocation.
func New(binary string, timeout time.Duration, opts ...Option) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	c := &Client{binary: binary, timeout: timeout, run: defaultRunner}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AudioURL resolves a direct, time-limited URL for the best audio stream.
func (c *Client) AudioURL(ctx context.Context, videoURL string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	stdout, stderr, err := c.run(ctx, c.binary, "-f", "bestaudio", "-g", videoURL)
	if err != nil {
		return "", c.failure("audio url", err, stderr)
	}
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "ytdlp", "audio url", "no url in output", nil)
}

// Captions downloads the auto-generated caption track in language. A video
// without captions yields an error tagged ErrSourceUnavailable.
func (c *Client) Captions(ctx context.Context, videoURL, language string) (Track, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		language = "en"
	}
	dir, err := os.MkdirTemp("", "transcriptsync-captions-")
	if err != nil {
		return Track{}, services.Wrap(services.ErrTransient, "ytdlp", "captions", "create temp dir", err)
	}
	defer os.RemoveAll(dir)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	output := filepath.Join(dir, "track")
	_, stderr, runErr := c.run(ctx, c.binary,
		"--write-auto-sub",
		"--sub-lang", language,
		"--skip-download",
		"--output", output,
		videoURL,
	)

	// yt-dlp can exit non-zero after writing the track (e.g. a thumbnail
	// warning), so the file on disk decides success.
	for _, ext := range []string{"." + language + ".vtt", "." + language + ".srt", ".vtt", ".srt"} {
		data, err := os.ReadFile(output + ext)
		if err != nil {
			continue
		}
		return Track{Content: string(data), Format: strings.TrimPrefix(filepath.Ext(ext), ".")}, nil
	}

	lowered := strings.ToLower(string(stderr))
	if strings.Contains(lowered, "no subtitles") || strings.Contains(lowered, "no automatic captions") {
		return Track{}, services.Wrap(services.ErrSourceUnavailable, "ytdlp", "captions", "no captions available", nil)
	}
	if runErr == nil {
		runErr = errors.New("no caption file written")
	}
	return Track{}, c.failure("captions", runErr, stderr)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) failure(operation string, err error, stderr []byte) error {
	detail := strings.TrimSpace(string(stderr))
	if len(detail) > 512 {
		detail = detail[len(detail)-512:]
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrExternalTool, "ytdlp", operation, "timed out after "+c.timeout.String(), err)
	}
	if detail != "" {
		return services.Wrap(services.ErrExternalTool, "ytdlp", operation, detail, err)
	}
	return services.Wrap(services.ErrExternalTool, "ytdlp", operation, "", err)
}

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}
