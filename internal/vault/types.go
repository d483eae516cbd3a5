package vault

import "github.com/theirongolddev/echolon/internal/model"

// noteRequest is the body of a note POST.
type noteRequest struct {
	Text   string `json:"text"`
	Owner  string `json:"owner,omitempty"`
	Urgent bool   `json:"urgent,omitempty"`
	Status string `json:"status,omitempty"`
	Due    string `json:"due,omitempty"`
}

// notesResponse is the note list. Some vault deployments return a bare
// array instead; decodeNotes accepts both.
type notesResponse struct {
	Notes []model.Note `json:"notes"`
}

// goalsDoc is the goal target document, keyed by metric name.
type goalsDoc struct {
	Goals map[string]float64 `json:"goals"`
}
