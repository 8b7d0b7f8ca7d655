package entity

import (
	"regexp"
	"time"
)

// SiteProfile holds every selector, URL and heuristic the pipeline depends on.
// Markup changes on the search engine or the catalog only touch this struct.
type SiteProfile struct {
	EngineURL    string
	EngineDomain string

	ConsentButton       string
	ImageSearchTrigger  string
	ImageInput          string
	ImageSubmit         string
	ResultsSearchInput  string
	RefinedSearchSubmit string
	ResultContainers    string

	RefinementKeyword string
	CatalogDomain     string
	DetailPagePattern *regexp.Regexp
	TitleSuffix       string
	FallbackLinkText  string
	MaxCandidates     int

	NavigationTimeout time.Duration
	ElementTimeout    time.Duration
	CandidateTimeout  time.Duration
}

// DefaultDetailPagePattern matches catalog release pages.
const DefaultDetailPagePattern = `/release/`

// DefaultSiteProfile targets Google image search and the Discogs catalog.
func DefaultSiteProfile() SiteProfile {
	return SiteProfile{
		EngineURL:    "https://www.google.com/",
		EngineDomain: "google.com",

		ConsentButton:       "#L2AGLb",
		ImageSearchTrigger:  `div.nDcEnd[aria-label="Búsqueda por imágenes"][role="button"]`,
		ImageInput:          `input.cB9M7[jsname="W7hAGe"]`,
		ImageSubmit:         `div[jsname="ZtOxCb"][role="button"]`,
		ResultsSearchInput:  "textarea.gLFyf",
		RefinedSearchSubmit: `button.HZVG1b[jsname="Tg7LZd"]`,
		ResultContainers:    "div.g a, .yuRUbf a",

		RefinementKeyword: "Discogs",
		CatalogDomain:     "discogs.com",
		DetailPagePattern: regexp.MustCompile(DefaultDetailPagePattern),
		TitleSuffix:       " | Discogs",
		FallbackLinkText:  "Discogs link",
		MaxCandidates:     5,

		NavigationTimeout: 15 * time.Second,
		ElementTimeout:    5 * time.Second,
		CandidateTimeout:  20 * time.Second,
	}
}
