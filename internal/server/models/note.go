package models

// Note is the payload for a shared note. Content is stored as the author's
// raw markdown; rendering happens per view and is never persisted.
type Note struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}
