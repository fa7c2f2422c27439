// Package artifact provides ArtifactStore implementations for binary
// payloads produced during runs, e.g. saved analysis documents.
package artifact

import "errors"

// ErrNotFound is returned when the requested artifact does not exist.
var ErrNotFound = errors.New("artifact not found")
