package entity

// SearchRequest is a single reverse-image lookup.
type SearchRequest struct {
	Image    string // data:image/<type>;base64,<payload>
	UseCache bool
}

// SearchResult is what a completed pipeline produces.
type SearchResult struct {
	ResultURL       string   `json:"result_url"`
	ExtractedLabels []string `json:"extracted_labels"` // insertion order, no duplicates
}

// Found reports whether at least one label was extracted.
func (r *SearchResult) Found() bool {
	return r != nil && len(r.ExtractedLabels) > 0
}

// Clone returns a deep copy so cached values can't be mutated by callers.
func (r *SearchResult) Clone() *SearchResult {
	if r == nil {
		return nil
	}
	labels := make([]string, len(r.ExtractedLabels))
	copy(labels, r.ExtractedLabels)
	return &SearchResult{ResultURL: r.ResultURL, ExtractedLabels: labels}
}
