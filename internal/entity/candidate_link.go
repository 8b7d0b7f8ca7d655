package entity

// CandidateLink is an outbound catalog link found on the results page.
type CandidateLink struct {
	URL          string
	DisplayText  string
	IsDetailPage bool // URL matches the catalog's record-page pattern
}
