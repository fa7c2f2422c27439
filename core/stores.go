package core

// MemoryStore persists and recalls conversational memory snippets. Search can
// be backed by embeddings, keywords or any heuristic; the built-in store does
// substring matching.
type MemoryStore interface {
	Search(sessionID string, query string, limit int) ([]SearchResult, error)
	Store(sessionID string, content string, metadata map[string]any) error
	Delete(sessionID string, memoryID string) error
}

// SearchResult is a recalled memory item with a relevance score.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// ArtifactStore persists opaque byte artifacts scoped by session ID.
// Implementations must be safe for concurrent use.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}
