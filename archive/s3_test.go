package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pithecene-io/deckhand/types"
)

type mockS3 struct {
	err  error
	keys []string
	body map[string][]byte
}

func (m *mockS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, _ := io.ReadAll(params.Body)
	if m.body == nil {
		m.body = make(map[string][]byte)
	}
	m.keys = append(m.keys, *params.Key)
	m.body[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func artifactFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArchive_UploadsAllArtifacts(t *testing.T) {
	mock := &mockS3{}
	a := newWithClient(Config{Bucket: "decks", Prefix: "runs"}, mock)

	paths := map[types.ArtifactKind]string{
		types.ArtifactDeck:    artifactFile(t, "slides.pptx", "pptx-bytes"),
		types.ArtifactSummary: artifactFile(t, "summary.md", "summary-text"),
	}

	if err := a.Archive(context.Background(), "run-42", paths); err != nil {
		t.Fatalf("archive: %v", err)
	}

	if len(mock.keys) != 2 {
		t.Fatalf("objects = %d, want 2", len(mock.keys))
	}
	// Fixed kind order: deck before summary.
	if mock.keys[0] != "runs/run-42/slides.pptx" {
		t.Errorf("key[0] = %q", mock.keys[0])
	}
	if mock.keys[1] != "runs/run-42/summary.md" {
		t.Errorf("key[1] = %q", mock.keys[1])
	}
	if string(mock.body["runs/run-42/slides.pptx"]) != "pptx-bytes" {
		t.Error("deck content mismatch")
	}
}

func TestArchive_NoPrefix(t *testing.T) {
	mock := &mockS3{}
	a := newWithClient(Config{Bucket: "decks"}, mock)

	paths := map[types.ArtifactKind]string{
		types.ArtifactDeck: artifactFile(t, "slides.pptx", "x"),
	}
	if err := a.Archive(context.Background(), "run-7", paths); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if mock.keys[0] != "run-7/slides.pptx" {
		t.Errorf("key = %q", mock.keys[0])
	}
}

func TestArchive_PutFailureReturnsError(t *testing.T) {
	mock := &mockS3{err: errors.New("access denied")}
	a := newWithClient(Config{Bucket: "decks"}, mock)

	paths := map[types.ArtifactKind]string{
		types.ArtifactDeck: artifactFile(t, "slides.pptx", "x"),
	}
	if err := a.Archive(context.Background(), "run-7", paths); err == nil {
		t.Fatal("expected error")
	}
}

func TestArchive_MissingFileReturnsError(t *testing.T) {
	mock := &mockS3{}
	a := newWithClient(Config{Bucket: "decks"}, mock)

	paths := map[types.ArtifactKind]string{
		types.ArtifactDeck: filepath.Join(t.TempDir(), "absent.pptx"),
	}
	if err := a.Archive(context.Background(), "run-7", paths); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (&Config{}).Validate(); err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if err := (&Config{Bucket: "b"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
