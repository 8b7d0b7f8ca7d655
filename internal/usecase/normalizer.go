package usecase

import "strings"

var (
	strippedChars = strings.NewReplacer(`"`, "", ",", "", "[", "", "]", "")
	dashes        = []string{"–", "-"}
)

// FormatExtractedText turns a catalog page title into a label: quotes,
// brackets and commas are removed, and everything after the first dash is
// reduced to the first word that follows it.
//
//	`"Artist" - Album [Deluxe], 2020` -> `Artist - Album`
func FormatExtractedText(text string) string {
	if text == "" {
		return ""
	}

	formatted := strippedChars.Replace(text)

	dashIndex, dash := -1, ""
	for _, d := range dashes {
		idx := strings.Index(formatted, d)
		if idx != -1 && (dashIndex == -1 || idx < dashIndex) {
			dashIndex, dash = idx, d
		}
	}

	if dashIndex != -1 {
		before := strings.TrimSpace(formatted[:dashIndex])
		after := strings.TrimSpace(formatted[dashIndex+len(dash):])
		firstWord, _, _ := strings.Cut(after, " ")
		formatted = before + " " + dash + " " + firstWord
	}

	return strings.TrimSpace(formatted)
}

// TrimTitleSuffix drops the site-name suffix and everything after it.
func TrimTitleSuffix(title, suffix string) string {
	if suffix == "" {
		return title
	}
	if before, _, found := strings.Cut(title, suffix); found {
		return strings.TrimSpace(before)
	}
	return title
}
