package drive

import (
	"context"
	"fmt"
	"os"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/pithecene-io/deckhand/iox"
)

const (
	// presentationMIME converts the uploaded file into an editable
	// hosted presentation.
	presentationMIME = "application/vnd.google-apps.presentation"
	// pptxMIME is the source content type of the uploaded deck.
	pptxMIME = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// Uploader uploads deck files to Google Drive with conversion to Google
// Slides and anyone-with-the-link viewing.
type Uploader struct {
	store *Store
}

// NewUploader creates an uploader backed by the given credential store.
func NewUploader(store *Store) *Uploader {
	return &Uploader{store: store}
}

// Upload uploads the deck at path under the given title and returns the
// hosted view URL. The file is converted to a native presentation and
// shared read-only with anyone holding the link.
func (u *Uploader) Upload(ctx context.Context, path, title string) (string, error) {
	client, err := u.store.Client(ctx)
	if err != nil {
		return "", err
	}

	srv, err := gdrive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("create drive service: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open deck %s: %w", path, err)
	}
	defer iox.DiscardClose(f)

	created, err := srv.Files.Create(&gdrive.File{
		Name:     title,
		MimeType: presentationMIME,
	}).
		Media(f, googleapi.ContentType(pptxMIME)).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload deck: %w", err)
	}

	link := created.WebViewLink
	if link == "" {
		link = fmt.Sprintf("https://docs.google.com/presentation/d/%s/edit", created.Id)
	}

	_, err = srv.Permissions.Create(created.Id, &gdrive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("share uploaded deck: %w", err)
	}

	return link, nil
}
