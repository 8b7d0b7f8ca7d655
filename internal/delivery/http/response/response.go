package response

// NotFoundMessage is returned when a search produced no labels.
const NotFoundMessage = "no information found"

// SearchResponse is a DTO for a completed search, mirroring entity.SearchResult.
type SearchResponse struct {
	Labels    []string `json:"labels"`
	Found     bool     `json:"found"`
	ResultURL string   `json:"result_url,omitempty"`
	Message   string   `json:"message,omitempty"`
}

type ReleaseSessionResponse struct {
	Released bool   `json:"released"`
	Message  string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
