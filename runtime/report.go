package runtime

import (
	"fmt"
	"strings"

	"github.com/pithecene-io/deckhand/types"
)

// buildReport renders the user-facing report: one line per enrichment
// outcome (a link, or a saved-locally fallback when the artifact exists
// but its enrichment failed), plus a trailing warnings line.
func buildReport(result *types.WorkflowResult, emailSent bool, recipient string) string {
	var lines []string

	switch {
	case result.HostedURL != "":
		lines = append(lines, "Slides: "+result.HostedURL)
	case result.Artifact(types.ArtifactDeck) != "":
		lines = append(lines, "Slides: saved locally as "+types.ArtifactDeck.Filename()+" (upload failed)")
	}

	switch {
	case result.ExternalDocURL != "":
		lines = append(lines, "Summary: "+result.ExternalDocURL)
	case result.Artifact(types.ArtifactSummary) != "":
		lines = append(lines, "Summary: saved locally as "+types.ArtifactSummary.Filename())
	}

	switch {
	case emailSent:
		lines = append(lines, "Email: sent to "+recipient)
	case result.Artifact(types.ArtifactEmailDraft) != "":
		lines = append(lines, "Email: saved as draft (notification failed)")
	}

	if len(lines) == 0 {
		lines = append(lines, "No artifacts were produced.")
	}

	if len(result.Errors) > 0 {
		lines = append(lines, "", "Warnings: "+strings.Join(result.Errors, ", "))
	}

	return strings.Join(lines, "\n")
}

// errorReport renders the report for a failed run: the failure text
// alone, with no artifact or enrichment lines.
func errorReport(result *types.WorkflowResult) string {
	msg := strings.TrimSpace(result.RawError)
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("Processing failed: %s", msg)
}
