// Package adapter defines the notification boundary.
//
// Notifiers deliver the email-draft content produced by a run to a
// downstream delivery system (an automation webhook, a Redis channel).
// The reconciler owns notifier lifecycle; users provide configuration only.
package adapter

import "context"

// EmailEvent is the payload published when a run produced an email draft.
type EmailEvent struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// HostedURL is the hosted presentation link, empty when the upload
	// was skipped or failed.
	HostedURL string `json:"hosted_url"`
	// ExternalDocURL is the external summary document link, when one exists.
	ExternalDocURL string `json:"external_doc_url"`
}

// Notifier delivers an email event to a downstream system.
// Implementations must be safe for single-use per run.
type Notifier interface {
	// Publish sends the event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *EmailEvent) error

	// Close releases notifier resources.
	Close() error
}
