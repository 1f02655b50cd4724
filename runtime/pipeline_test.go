package runtime

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pithecene-io/deckhand/journal"
	"github.com/pithecene-io/deckhand/types"
)

func TestPipeline_ProcessCompletedRun(t *testing.T) {
	dir := t.TempDir()
	agent := newMockAgent(0)
	agent.produce = func() {
		writeArtifact(t, dir, "slides.pptx")
		writeArtifact(t, dir, "summary.md")
		writeArtifact(t, dir, "email_draft.md")
	}

	journalPath := filepath.Join(t.TempDir(), "journal.bin")
	j, err := journal.Open(journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}

	uploader := &mockUploader{url: "https://docs.google.com/presentation/d/abc/edit"}
	notifier := &mockNotifier{}

	pipeline := NewPipeline(&PipelineConfig{
		Run: RunConfig{
			WorkDir:      dir,
			AgentFactory: factoryFor(agent),
		},
		Reconcile: ReconcileConfig{
			Uploader:  uploader,
			Notifier:  notifier,
			Recipient: "team@example.com",
		},
		Journal: j,
	})

	processed, err := pipeline.Process(context.Background(), "meeting.pdf")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if processed.Result.Status != types.StatusCompleted {
		t.Fatalf("status = %s, want completed", processed.Result.Status)
	}
	if !processed.Outcome.EmailSent {
		t.Error("notification was not delivered")
	}
	if processed.Result.HostedURL != uploader.url {
		t.Errorf("hosted URL = %q", processed.Result.HostedURL)
	}
	if !strings.HasPrefix(processed.RunID, "run-") {
		t.Errorf("run ID = %q, want run- prefix", processed.RunID)
	}

	records, err := j.Records()
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("journal has %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.RunID != processed.RunID {
		t.Errorf("journaled run ID = %q, want %q", rec.RunID, processed.RunID)
	}
	if rec.Source != "meeting.pdf" {
		t.Errorf("journaled source = %q", rec.Source)
	}
	if rec.Status != types.StatusCompleted {
		t.Errorf("journaled status = %s", rec.Status)
	}
	if !rec.EmailSent {
		t.Error("journaled email_sent = false")
	}
	if rec.HostedURL != uploader.url {
		t.Errorf("journaled hosted URL = %q", rec.HostedURL)
	}
}

func TestPipeline_ProcessErrorRunIsJournaled(t *testing.T) {
	dir := t.TempDir()
	agent := newMockAgent(1)
	agent.stderr = []byte("agent exploded")

	journalPath := filepath.Join(t.TempDir(), "journal.bin")
	j, err := journal.Open(journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}

	uploader := &mockUploader{url: "https://example.com"}
	pipeline := NewPipeline(&PipelineConfig{
		Run: RunConfig{
			WorkDir:      dir,
			AgentFactory: factoryFor(agent),
		},
		Reconcile: ReconcileConfig{Uploader: uploader},
		Journal:   j,
	})

	processed, err := pipeline.Process(context.Background(), "meeting.pdf")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if processed.Result.Status != types.StatusError {
		t.Fatalf("status = %s, want error", processed.Result.Status)
	}
	if uploader.calls != 0 {
		t.Error("uploader was called for an error run")
	}
	if !strings.Contains(processed.Outcome.Report, "Processing failed: agent exploded") {
		t.Errorf("report = %q", processed.Outcome.Report)
	}

	records, err := j.Records()
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(records) != 1 || records[0].Status != types.StatusError {
		t.Fatalf("journal records = %+v, want one error record", records)
	}
}

func TestPipeline_NoJournalConfigured(t *testing.T) {
	dir := t.TempDir()
	agent := newMockAgent(0)
	agent.produce = func() {
		writeArtifact(t, dir, "slides.pptx")
		writeArtifact(t, dir, "summary.md")
		writeArtifact(t, dir, "email_draft.md")
	}

	pipeline := NewPipeline(&PipelineConfig{
		Run: RunConfig{
			WorkDir:      dir,
			AgentFactory: factoryFor(agent),
		},
		Reconcile: ReconcileConfig{},
	})

	processed, err := pipeline.Process(context.Background(), "meeting.pdf")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed.Result.Status != types.StatusCompleted {
		t.Fatalf("status = %s, want completed", processed.Result.Status)
	}
	if processed.Duration < 0 {
		t.Error("negative duration")
	}
}

func TestPipeline_LaunchFailurePropagates(t *testing.T) {
	agent := newMockAgent(0)
	agent.startErr = os.ErrPermission

	pipeline := NewPipeline(&PipelineConfig{
		Run: RunConfig{
			WorkDir:      t.TempDir(),
			AgentFactory: factoryFor(agent),
		},
	})

	if _, err := pipeline.Process(context.Background(), "meeting.pdf"); err == nil {
		t.Fatal("expected launch failure to propagate")
	}
}
