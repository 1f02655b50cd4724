package runtime

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pithecene-io/deckhand/adapter"
	"github.com/pithecene-io/deckhand/types"
)

type mockUploader struct {
	url   string
	err   error
	calls int
}

func (m *mockUploader) Upload(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.url, m.err
}

type mockNotifier struct {
	err   error
	event *adapter.EmailEvent
	calls int
}

func (m *mockNotifier) Publish(_ context.Context, event *adapter.EmailEvent) error {
	m.calls++
	m.event = event
	return m.err
}

func (m *mockNotifier) Close() error { return nil }

type mockArchiver struct {
	err   error
	paths map[types.ArtifactKind]string
}

func (m *mockArchiver) Archive(_ context.Context, _ string, paths map[types.ArtifactKind]string) error {
	m.paths = paths
	return m.err
}

// completedResult builds a completed result with deck and email-draft
// artifacts on disk.
func completedResult(t *testing.T) *types.WorkflowResult {
	t.Helper()
	dir := t.TempDir()

	deck := filepath.Join(dir, "slides.pptx")
	if err := os.WriteFile(deck, []byte("pptx"), 0o644); err != nil {
		t.Fatal(err)
	}
	draft := filepath.Join(dir, "email_draft.md")
	if err := os.WriteFile(draft, []byte("# Sprint Review Summary\n\nHighlights below."), 0o644); err != nil {
		t.Fatal(err)
	}

	result := types.NewWorkflowResult(types.StatusCompleted)
	result.SetArtifact(types.ArtifactDeck, deck)
	result.SetArtifact(types.ArtifactEmailDraft, draft)
	return result
}

func TestReconcile_UploadAndNotifySucceed(t *testing.T) {
	uploader := &mockUploader{url: "https://docs.example.com/d/abc123"}
	notifier := &mockNotifier{}

	r := NewReconciler(&ReconcileConfig{
		Uploader:  uploader,
		Notifier:  notifier,
		Recipient: "team@example.com",
	})

	result := completedResult(t)
	outcome := r.Reconcile(context.Background(), result)

	if result.HostedURL != uploader.url {
		t.Errorf("hosted url = %q", result.HostedURL)
	}
	if !outcome.EmailSent {
		t.Error("email not marked sent")
	}
	if notifier.event == nil {
		t.Fatal("no event published")
	}
	if notifier.event.Subject != "Sprint Review Summary" {
		t.Errorf("subject = %q", notifier.event.Subject)
	}
	if notifier.event.Body != "Highlights below." {
		t.Errorf("body = %q", notifier.event.Body)
	}
	// Upload happens before notification so the event carries the link.
	if notifier.event.HostedURL != uploader.url {
		t.Errorf("event hosted url = %q", notifier.event.HostedURL)
	}

	if !strings.Contains(outcome.Report, "Slides: "+uploader.url) {
		t.Errorf("report missing link line:\n%s", outcome.Report)
	}
	if !strings.Contains(outcome.Report, "Email: sent to team@example.com") {
		t.Errorf("report missing sent line:\n%s", outcome.Report)
	}
}

func TestReconcile_BothFailProducesTwoFallbackLines(t *testing.T) {
	uploader := &mockUploader{err: errors.New("credentials missing")}
	notifier := &mockNotifier{err: errors.New("webhook down")}

	r := NewReconciler(&ReconcileConfig{
		Uploader:  uploader,
		Notifier:  notifier,
		Recipient: "team@example.com",
	})

	result := completedResult(t)
	outcome := r.Reconcile(context.Background(), result)

	if result.HostedURL != "" {
		t.Errorf("hosted url set despite upload failure: %q", result.HostedURL)
	}
	if outcome.EmailSent {
		t.Error("email marked sent despite notifier failure")
	}

	fallbacks := 0
	for _, line := range strings.Split(outcome.Report, "\n") {
		if strings.Contains(line, "saved") {
			fallbacks++
		}
		if strings.Contains(line, "http") {
			t.Errorf("unexpected link line: %s", line)
		}
	}
	if fallbacks != 2 {
		t.Errorf("fallback lines = %d, want 2:\n%s", fallbacks, outcome.Report)
	}
}

func TestReconcile_ErrorStatusSkipsEnrichment(t *testing.T) {
	uploader := &mockUploader{url: "https://docs.example.com/d/abc123"}
	notifier := &mockNotifier{}

	r := NewReconciler(&ReconcileConfig{
		Uploader:  uploader,
		Notifier:  notifier,
		Recipient: "team@example.com",
	})

	result := types.NewWorkflowResult(types.StatusError)
	result.RawError = "agent exploded"
	result.SetArtifact(types.ArtifactDeck, "/tmp/slides.pptx")

	outcome := r.Reconcile(context.Background(), result)

	if uploader.calls != 0 {
		t.Error("uploader called for error result")
	}
	if notifier.calls != 0 {
		t.Error("notifier called for error result")
	}
	if outcome.Report != "Processing failed: agent exploded" {
		t.Errorf("report = %q", outcome.Report)
	}
}

func TestReconcile_SkipsUploadWhenHostedURLPresent(t *testing.T) {
	uploader := &mockUploader{url: "https://docs.example.com/d/other"}

	r := NewReconciler(&ReconcileConfig{Uploader: uploader})

	result := completedResult(t)
	result.HostedURL = "https://docs.example.com/d/from-agent"

	r.Reconcile(context.Background(), result)

	if uploader.calls != 0 {
		t.Error("uploader called despite existing hosted URL")
	}
	if result.HostedURL != "https://docs.example.com/d/from-agent" {
		t.Errorf("hosted url overwritten: %q", result.HostedURL)
	}
}

func TestReconcile_NotifierFailureDoesNotBlockArchive(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("unreachable")}
	archiver := &mockArchiver{}

	r := NewReconciler(&ReconcileConfig{
		Notifier: notifier,
		Archiver: archiver,
	})

	result := completedResult(t)
	outcome := r.Reconcile(context.Background(), result)

	if !outcome.Archived {
		t.Error("archive skipped after notifier failure")
	}
	if archiver.paths == nil {
		t.Error("archiver received no paths")
	}
}

func TestReconcile_ArchiveFailureIsWarning(t *testing.T) {
	archiver := &mockArchiver{err: errors.New("bucket denied")}

	r := NewReconciler(&ReconcileConfig{Archiver: archiver})

	result := completedResult(t)
	outcome := r.Reconcile(context.Background(), result)

	if outcome.Archived {
		t.Error("archive marked successful")
	}
	if result.Status != types.StatusCompleted {
		t.Errorf("status downgraded to %s", result.Status)
	}
	found := false
	for _, w := range result.Errors {
		if strings.Contains(w, "archive failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want archive warning", result.Errors)
	}
}

func TestReconcile_WarningsLineInReport(t *testing.T) {
	r := NewReconciler(&ReconcileConfig{})

	result := completedResult(t)
	result.AddWarning("summary.md not generated")

	outcome := r.Reconcile(context.Background(), result)
	if !strings.Contains(outcome.Report, "Warnings: summary.md not generated") {
		t.Errorf("report missing warnings line:\n%s", outcome.Report)
	}
}

func TestSplitDraft(t *testing.T) {
	tests := []struct {
		name    string
		content string
		subject string
		body    string
	}{
		{
			name:    "h1 heading",
			content: "# Weekly Sync\nLine one\nLine two",
			subject: "Weekly Sync",
			body:    "Line one\nLine two",
		},
		{
			name:    "h2 heading",
			content: "## Standup Notes\nBody",
			subject: "Standup Notes",
			body:    "Body",
		},
		{
			name:    "plain first line",
			content: "Subject here\nBody here",
			subject: "Subject here",
			body:    "Body here",
		},
		{
			name:    "single line keeps full content as body",
			content: "Only one line",
			subject: "Only one line",
			body:    "Only one line",
		},
		{
			name:    "empty heading falls back",
			content: "#\nBody",
			subject: "Meeting Summary",
			body:    "Body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := SplitDraft(tt.content)
			if subject != tt.subject {
				t.Errorf("subject = %q, want %q", subject, tt.subject)
			}
			if body != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}
