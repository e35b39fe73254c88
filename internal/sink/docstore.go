package sink

import (
	"context"
	"fmt"
	"strings"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/services"
	"transcriptsync/internal/services/drive"
)

// NameDocstore is the registered name of the document store sink.
const NameDocstore = "docstore"

// DocumentStore creates and finds documents.
type DocumentStore interface {
	SearchInFolder(ctx context.Context, folderID, fragment string) ([]drive.File, error)
	CreateDocument(ctx context.Context, folderID, name string) (drive.File, error)
	InsertText(ctx context.Context, documentID, text string) error
	DeleteFile(ctx context.Context, fileID string) error
}

// Docstore creates one transcript document per episode.
type Docstore struct {
	Store DocumentStore
	// FolderID is used when the episode has no folder of its own.
	FolderID string
}

// Name implements Sink.
func (s *Docstore) Name() string { return NameDocstore }

// DocumentName is "Ep{id} - {guest} (Transcript)".
func DocumentName(ep catalog.Episode) string {
	guest := strings.TrimSpace(ep.Guest)
	if guest == "" {
		guest = "Unknown"
	}
	return fmt.Sprintf("Ep%s - %s (Transcript)", ep.ID, guest)
}

// Publish creates the document unless one already exists in the folder.
// In an episode's own folder any transcript document counts; in the shared
// folder only the exact name does.
func (s *Docstore) Publish(ctx context.Context, req Request) (Ack, error) {
	folder, own := strings.TrimSpace(req.Episode.FolderID), true
	if folder == "" {
		folder, own = strings.TrimSpace(s.FolderID), false
	}
	if folder == "" {
		return Ack{}, services.Wrap(services.ErrConfiguration, "docstore", "publish", "no folder for episode "+req.Episode.ID+" and drive.folder_id unset", nil)
	}
	name := DocumentName(req.Episode)

	existing, err := s.Store.SearchInFolder(ctx, folder, "Transcript")
	if err != nil {
		return Ack{}, err
	}
	for _, f := range existing {
		if strings.EqualFold(f.Name, name) || (own && strings.Contains(strings.ToLower(f.Name), "transcript")) {
			return Ack{Sink: NameDocstore, Location: drive.DocumentURL(f.ID), Existing: true}, nil
		}
	}

	doc, err := s.Store.CreateDocument(ctx, folder, name)
	if err != nil {
		return Ack{}, err
	}
	if err := s.Store.InsertText(ctx, doc.ID, req.Transcript.Text()); err != nil {
		// An empty document left behind would pass the existence check on
		// the next run.
		if derr := s.Store.DeleteFile(context.WithoutCancel(ctx), doc.ID); derr != nil {
			return Ack{}, fmt.Errorf("%w (remove empty document %s by hand: %v)", err, doc.ID, derr)
		}
		return Ack{}, err
	}
	return Ack{Sink: NameDocstore, Location: drive.DocumentURL(doc.ID)}, nil
}
