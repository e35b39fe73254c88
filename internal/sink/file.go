package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/services"
	"transcriptsync/internal/textutil"
	"transcriptsync/internal/transcript"
)

// NameFile is the registered name of the local file sink.
const NameFile = "file"

// File writes transcripts under a directory. The target path existing is
// the idempotency check.
type File struct {
	Dir string
	// KeepRaw writes the raw diarized JSON beside the transcript.
	KeepRaw bool
}

// Name implements Sink.
func (s *File) Name() string { return NameFile }

// Publish writes ep{n}_{ref}.md for speaker transcripts and ep{n}_{ref}.txt
// otherwise.
func (s *File) Publish(_ context.Context, req Request) (Ack, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return Ack{}, services.Wrap(services.ErrConfiguration, "file", "publish", "output directory not set", nil)
	}
	base := BaseName(req.Episode)
	ext, body := ".txt", req.Transcript.Text()+"\n"
	if req.Artifact.Format == transcript.FormatDiarized {
		ext = ".md"
		body = "# Episode " + req.Episode.ID + " Transcript\n\n" + req.Transcript.Text() + "\n"
	}
	target := filepath.Join(s.Dir, base+ext)
	ack := Ack{Sink: NameFile, Location: target}

	exists, err := pathExists(target)
	if err != nil {
		return Ack{}, services.Wrap(services.ErrTransient, "file", "stat", target, err)
	}
	if exists {
		ack.Existing = true
		return ack, nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return Ack{}, services.Wrap(services.ErrConfiguration, "file", "mkdir", s.Dir, err)
	}
	if s.KeepRaw && req.Artifact.Format == transcript.FormatDiarized && len(req.Artifact.Content) > 0 {
		raw := filepath.Join(s.Dir, base+".json")
		if err := renameio.WriteFile(raw, req.Artifact.Content, 0o644); err != nil {
			return Ack{}, services.Wrap(services.ErrTransient, "file", "write raw", raw, err)
		}
	}
	if err := renameio.WriteFile(target, []byte(body), 0o644); err != nil {
		return Ack{}, services.Wrap(services.ErrTransient, "file", "write", target, err)
	}
	return ack, nil
}

// BaseName is ep{id}_{video id}, falling back to the guest token when the
// episode has no video reference.
func BaseName(ep catalog.Episode) string {
	suffix := ep.VideoRef()
	if suffix == "" {
		suffix = textutil.SanitizeToken(ep.Guest)
	}
	return fmt.Sprintf("ep%s_%s", textutil.SanitizeToken(ep.ID), suffix)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
