package extract

import (
	nurl "net/url"

	"github.com/use-agent/sift/config"
)

// IsArticleURL reports whether a resolved URL should be treated as an
// article page for the given site.
//
// Front pages and index pages are never articles: an empty path, "/", or
// "/index.html" fails the gate before the site patterns run. After that the
// URL must match url_must_contain (when configured) and must not match
// url_must_not_contain.
func IsArticleURL(site *config.SiteConfig, rawURL string) bool {
	u, err := nurl.Parse(rawURL)
	if err != nil {
		return false
	}
	switch u.Path {
	case "", "/", "index.html", "/index.html":
		return false
	}

	if re := site.RequireRegexp(); re != nil && !re.MatchString(rawURL) {
		return false
	}
	if re := site.RejectRegexp(); re != nil && re.MatchString(rawURL) {
		return false
	}
	return true
}
