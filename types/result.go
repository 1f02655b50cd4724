// Package types defines core domain types for the deckhand pipeline.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"encoding/json"
	"fmt"
)

// WorkflowStatus classifies the outcome of one analysis run.
type WorkflowStatus string

const (
	// StatusCompleted indicates the agent exited cleanly.
	// Individual artifacts may still be missing; callers must check.
	StatusCompleted WorkflowStatus = "completed"
	// StatusPartial indicates the run was cut short (timeout) but some
	// artifacts may have been produced before termination.
	StatusPartial WorkflowStatus = "partial"
	// StatusError indicates the agent failed. No artifact paths are
	// trusted even if files exist on disk.
	StatusError WorkflowStatus = "error"
)

// ArtifactKind identifies one of the files the analysis agent produces
// in the working directory.
type ArtifactKind string

const (
	// ArtifactDeck is the generated slide deck binary.
	ArtifactDeck ArtifactKind = "deck"
	// ArtifactSummary is the meeting summary text.
	ArtifactSummary ArtifactKind = "summary"
	// ArtifactEmailDraft is the email draft text.
	ArtifactEmailDraft ArtifactKind = "emailDraft"
)

// Filename returns the well-known filename for the artifact kind within
// the working directory.
func (k ArtifactKind) Filename() string {
	switch k {
	case ArtifactDeck:
		return "slides.pptx"
	case ArtifactSummary:
		return "summary.md"
	case ArtifactEmailDraft:
		return "email_draft.md"
	default:
		return string(k)
	}
}

// ArtifactKinds lists all expected artifact kinds in report order.
func ArtifactKinds() []ArtifactKind {
	return []ArtifactKind{ArtifactDeck, ArtifactSummary, ArtifactEmailDraft}
}

// ResultFilename is the structured result file the agent writes on a
// clean exit.
const ResultFilename = "result.json"

// WorkflowResult is the outcome of one analysis run.
//
// Created once per uploaded file by the runner, mutated additively by the
// reconciler (never a status downgrade), then rendered into a report and
// discarded.
type WorkflowResult struct {
	// Status is the overall run classification.
	Status WorkflowStatus `json:"status"`
	// Artifacts maps artifact kind to its filesystem location. A kind is
	// present only if the agent produced that file.
	Artifacts map[ArtifactKind]string `json:"artifacts,omitempty"`
	// HostedURL is the hosted presentation link, set by the reconciler
	// (or by the agent when it uploaded the deck itself).
	HostedURL string `json:"hosted_url,omitempty"`
	// ExternalDocURL is the external summary document link, when the
	// agent published one.
	ExternalDocURL string `json:"external_doc_url,omitempty"`
	// Errors accumulates non-fatal warnings across the run.
	Errors []string `json:"errors,omitempty"`
	// RawError is the agent's failure text. Set only when Status is
	// StatusError.
	RawError string `json:"raw_error,omitempty"`
}

// NewWorkflowResult returns a result with the given status and an empty
// artifact map.
func NewWorkflowResult(status WorkflowStatus) *WorkflowResult {
	return &WorkflowResult{
		Status:    status,
		Artifacts: make(map[ArtifactKind]string),
	}
}

// SetArtifact records the location of a produced artifact.
func (r *WorkflowResult) SetArtifact(kind ArtifactKind, path string) {
	if r.Artifacts == nil {
		r.Artifacts = make(map[ArtifactKind]string)
	}
	r.Artifacts[kind] = path
}

// Artifact returns the recorded location for kind, or "" if absent.
// Paths are never trusted when Status is StatusError.
func (r *WorkflowResult) Artifact(kind ArtifactKind) string {
	if r.Status == StatusError {
		return ""
	}
	return r.Artifacts[kind]
}

// AddWarning appends a non-fatal warning string.
func (r *WorkflowResult) AddWarning(msg string) {
	r.Errors = append(r.Errors, msg)
}

// resultFile is the on-disk shape of the agent's structured result.
// Every field is optional; defaults are applied at the parse boundary
// rather than trusted ad hoc downstream.
type resultFile struct {
	Status         string   `json:"status"`
	SlidesPath     string   `json:"slides_pptx_path"`
	SummaryPath    string   `json:"summary_md_path"`
	EmailDraftPath string   `json:"email_draft_path"`
	SlidesURL      string   `json:"slides_url"`
	DocURL         string   `json:"doc_url"`
	Errors         []string `json:"errors"`
	Error          string   `json:"error"`
}

// ParseResultFile decodes the agent's structured result file.
//
// Defaults per field: missing status means completed; missing errors means
// none. An unknown status value or malformed JSON is a parse error; the
// caller decides the fallback (the runner synthesizes a result instead).
func ParseResultFile(data []byte) (*WorkflowResult, error) {
	var rf resultFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("invalid result file: %w", err)
	}

	status := WorkflowStatus(rf.Status)
	if rf.Status == "" {
		status = StatusCompleted
	}
	switch status {
	case StatusCompleted, StatusPartial, StatusError:
	default:
		return nil, fmt.Errorf("invalid result file: unknown status %q", rf.Status)
	}

	result := NewWorkflowResult(status)
	result.HostedURL = rf.SlidesURL
	result.ExternalDocURL = rf.DocURL
	result.Errors = rf.Errors
	result.RawError = rf.Error

	if rf.SlidesPath != "" {
		result.SetArtifact(ArtifactDeck, rf.SlidesPath)
	}
	if rf.SummaryPath != "" {
		result.SetArtifact(ArtifactSummary, rf.SummaryPath)
	}
	if rf.EmailDraftPath != "" {
		result.SetArtifact(ArtifactEmailDraft, rf.EmailDraftPath)
	}

	return result, nil
}
