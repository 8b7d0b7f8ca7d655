package request

// SearchRequest is the body of POST /search. useCache defaults to false.
type SearchRequest struct {
	Image    string `json:"image"`
	UseCache bool   `json:"useCache"`
}
