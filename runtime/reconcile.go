package runtime

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pithecene-io/deckhand/adapter"
	"github.com/pithecene-io/deckhand/log"
	"github.com/pithecene-io/deckhand/types"
)

// Uploader uploads a deck file to a document host and returns the hosted
// view URL.
type Uploader interface {
	Upload(ctx context.Context, path, title string) (string, error)
}

// Archiver copies surviving artifacts to long-term storage.
type Archiver interface {
	Archive(ctx context.Context, runID string, paths map[types.ArtifactKind]string) error
}

// ReconcileConfig configures a reconciler. Every collaborator is
// optional; a nil field disables that enrichment step.
type ReconcileConfig struct {
	// Uploader uploads the deck artifact to the document host.
	Uploader Uploader
	// Notifier delivers the email draft downstream.
	Notifier adapter.Notifier
	// Archiver copies artifacts to long-term storage.
	Archiver Archiver
	// RunID keys archived artifacts. If empty, a fresh ID is generated.
	RunID string
	// Recipient is the notification recipient address.
	Recipient string
	// DeckTitle names the hosted document (default: "Meeting Deck <date>").
	DeckTitle string
	// Logger is the reconciliation logger. If nil, a fresh one is created.
	Logger *log.Logger
}

// Outcome summarizes one reconciliation pass.
type Outcome struct {
	// Report is the human-readable report text.
	Report string
	// EmailSent reports whether the notification was delivered.
	EmailSent bool
	// Archived reports whether the artifact archive step succeeded.
	Archived bool
}

// Reconciler performs the best-effort enrichment steps on a workflow
// result: hosted upload, downstream notification, artifact archive.
// Each step is independently fault-tolerant; a failure downgrades to a
// report fallback line and never aborts the sibling steps.
type Reconciler struct {
	config *ReconcileConfig
}

// NewReconciler creates a reconciler.
func NewReconciler(config *ReconcileConfig) *Reconciler {
	return &Reconciler{config: config}
}

// Reconcile enriches the result in place (additively, never a status
// downgrade) and builds the user-facing report.
//
// When the result is StatusError no enrichment runs: no artifact is
// trusted and the report is the failure text alone.
func (r *Reconciler) Reconcile(ctx context.Context, result *types.WorkflowResult) *Outcome {
	logger := r.config.Logger
	if logger == nil {
		logger = log.NewLogger(NewRunID(), "reconcile")
	}

	if result.Status == types.StatusError {
		return &Outcome{Report: errorReport(result)}
	}

	r.uploadDeck(ctx, result, logger)
	outcome := &Outcome{
		EmailSent: r.notify(ctx, result, logger),
	}
	outcome.Archived = r.archive(ctx, result, logger)
	outcome.Report = buildReport(result, outcome.EmailSent, r.config.Recipient)
	return outcome
}

// uploadDeck uploads the deck artifact when no hosted URL is present yet.
// On success HostedURL is populated; on any failure it stays unset and
// the report falls back to the saved-locally line.
func (r *Reconciler) uploadDeck(ctx context.Context, result *types.WorkflowResult, logger *log.Logger) {
	if r.config.Uploader == nil || result.HostedURL != "" {
		return
	}
	deckPath := result.Artifact(types.ArtifactDeck)
	if deckPath == "" {
		return
	}
	if _, err := os.Stat(deckPath); err != nil {
		logger.Warn("deck artifact missing at upload time", map[string]any{
			"path": deckPath,
		})
		return
	}

	title := r.config.DeckTitle
	if title == "" {
		title = "Meeting Deck " + time.Now().Format("2006-01-02")
	}

	url, err := r.config.Uploader.Upload(ctx, deckPath, title)
	if err != nil {
		logger.Warn("deck upload failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	result.HostedURL = url
	logger.Info("deck uploaded", map[string]any{
		"url": url,
	})
}

// notify reads the email draft, splits it into subject and body, and
// publishes the notification. Returns true only on confirmed delivery.
func (r *Reconciler) notify(ctx context.Context, result *types.WorkflowResult, logger *log.Logger) bool {
	if r.config.Notifier == nil {
		return false
	}
	draftPath := result.Artifact(types.ArtifactEmailDraft)
	if draftPath == "" {
		return false
	}
	content, err := os.ReadFile(draftPath)
	if err != nil {
		logger.Warn("email draft unreadable", map[string]any{
			"path":  draftPath,
			"error": err.Error(),
		})
		return false
	}

	subject, body := SplitDraft(string(content))
	event := &adapter.EmailEvent{
		To:             r.config.Recipient,
		Subject:        subject,
		Body:           body,
		HostedURL:      result.HostedURL,
		ExternalDocURL: result.ExternalDocURL,
	}

	if err := r.config.Notifier.Publish(ctx, event); err != nil {
		logger.Warn("notification failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	logger.Info("notification sent", map[string]any{
		"to": r.config.Recipient,
	})
	return true
}

// archive copies surviving artifacts to long-term storage. Failure is a
// warning only; it never affects the result status.
func (r *Reconciler) archive(ctx context.Context, result *types.WorkflowResult, logger *log.Logger) bool {
	if r.config.Archiver == nil || len(result.Artifacts) == 0 {
		return false
	}
	runID := r.config.RunID
	if runID == "" {
		runID = NewRunID()
	}
	if err := r.config.Archiver.Archive(ctx, runID, result.Artifacts); err != nil {
		logger.Warn("artifact archive failed", map[string]any{
			"error": err.Error(),
		})
		result.AddWarning(fmt.Sprintf("archive failed: %v", err))
		return false
	}
	return true
}

// SplitDraft splits email draft content into a subject (first line,
// leading markdown heading markers stripped) and a body (the remaining
// lines). A single-line draft keeps the full content as the body.
func SplitDraft(content string) (subject, body string) {
	trimmed := strings.TrimSpace(content)
	lines := strings.Split(trimmed, "\n")

	subject = strings.TrimSpace(strings.TrimLeft(lines[0], "# "))
	if subject == "" {
		subject = "Meeting Summary"
	}

	if len(lines) > 1 {
		body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	} else {
		body = trimmed
	}
	return subject, body
}
