package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/lens-lookup-service/internal/entity"
	"github.com/user/lens-lookup-service/pkg/utils"
)

// RankCandidateLinks picks the catalog links worth visiting from a rendered
// results page. Links inside organic result containers win over links found
// anywhere else; within them, detail pages come first. The result is
// deduplicated by URL and capped at profile.MaxCandidates.
func RankCandidateLinks(html, pageURL string, profile entity.SiteProfile) ([]entity.CandidateLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	preferred := collectCatalogLinks(doc.Find(profile.ResultContainers), base, profile)
	if len(preferred) > 0 {
		ordered := make([]entity.CandidateLink, 0, len(preferred))
		for _, link := range preferred {
			if link.IsDetailPage {
				ordered = append(ordered, link)
			}
		}
		ordered = append(ordered, preferred...)
		return dedupeLinks(ordered, profile.MaxCandidates), nil
	}

	all := collectCatalogLinks(doc.Find("a"), base, profile)
	return dedupeLinks(all, profile.MaxCandidates), nil
}

func collectCatalogLinks(sel *goquery.Selection, base *url.URL, profile entity.SiteProfile) []entity.CandidateLink {
	var links []entity.CandidateLink
	sel.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		abs, err := utils.ToAbsoluteURL(base, strings.TrimSpace(href))
		if err != nil {
			return
		}
		u, err := url.Parse(abs)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		if !hostMatches(u.Hostname(), profile.CatalogDomain) || hostMatches(u.Hostname(), profile.EngineDomain) {
			return
		}

		text := strings.TrimSpace(s.Text())
		if text == "" {
			text = profile.FallbackLinkText
		}
		links = append(links, entity.CandidateLink{
			URL:          abs,
			DisplayText:  text,
			IsDetailPage: profile.DetailPagePattern != nil && profile.DetailPagePattern.MatchString(abs),
		})
	})
	return links
}

// hostMatches reports whether host is domain or one of its subdomains.
func hostMatches(host, domain string) bool {
	if domain == "" {
		return false
	}
	host = strings.ToLower(host)
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func dedupeLinks(links []entity.CandidateLink, limit int) []entity.CandidateLink {
	if limit <= 0 {
		limit = len(links)
	}
	seen := make(map[string]struct{}, len(links))
	out := make([]entity.CandidateLink, 0, min(len(links), limit))
	for _, link := range links {
		if len(out) == limit {
			break
		}
		if _, dup := seen[link.URL]; dup {
			continue
		}
		seen[link.URL] = struct{}{}
		out = append(out, link)
	}
	return out
}
