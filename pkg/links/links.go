// Package links classifies node hrefs and decorates outbound ones with the
// referral parameters the hub always sends.
package links

import "strings"

// UTMParams is appended to every external link.
const UTMParams = "utm_source=hub&utm_medium=referral&utm_campaign=global_menu"

// IsExternalLink reports whether href leaves the site.
func IsExternalLink(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// ApplyUtmParams appends UTMParams to an external href. Internal hrefs and
// hrefs that already carry utm_source are returned unchanged.
func ApplyUtmParams(href string) string {
	if !IsExternalLink(href) {
		return href
	}
	if strings.Contains(href, "utm_source=") {
		return href
	}
	sep := "?"
	if strings.Contains(href, "?") {
		sep = "&"
	}
	return href + sep + UTMParams
}

// Fragment returns the node id an internal "#id" href points at.
func Fragment(href string) (string, bool) {
	if !strings.HasPrefix(href, "#") || len(href) < 2 {
		return "", false
	}
	return href[1:], true
}
