package types

// Version is the canonical project version.
// The CLI and the notification event payload share this version.
const Version = "0.3.0"
