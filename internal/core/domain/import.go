package domain

// ImportOptions controls folder imports.
type ImportOptions struct {
	// InCorpus registers imported files as corpus members.
	InCorpus bool

	// Submit hands each newly registered document to processing.
	Submit bool
}

// ImportedFile is the outcome for one file.
type ImportedFile struct {
	Path       string `json:"path"`
	DocumentID string `json:"document_id,omitempty"`

	// Skipped is set when the path was already registered.
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ImportResult summarises a folder import.
type ImportResult struct {
	Root       string         `json:"root"`
	Registered int            `json:"registered"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	Files      []ImportedFile `json:"files"`
}

// Add records one file outcome.
func (r *ImportResult) Add(f ImportedFile) {
	switch {
	case f.Skipped:
		r.Skipped++
	case f.DocumentID == "":
		r.Failed++
	default:
		r.Registered++
	}
	r.Files = append(r.Files, f)
}
