package cms

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var markdownImageExpr = regexp.MustCompile(`!\[[^\]]*\]\(\s*([^)\s]+)(?:\s+"[^"]*")?\s*\)`)

// ExtractImageURLs collects image references from HTML <img> tags and markdown image syntax, in
// document order and without duplicates. Protocol-relative references get an https scheme.
func ExtractImageURLs(body string) []string {
	var urls []string

	if strings.Contains(body, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
			doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
				src, _ := img.Attr("src")
				urls = appendUnique(urls, src)
			})
		}
	}

	for _, m := range markdownImageExpr.FindAllStringSubmatch(body, -1) {
		urls = appendUnique(urls, m[1])
	}
	return urls
}

func appendUnique(list []string, u string) []string {
	u = strings.TrimSpace(u)
	if u == "" {
		return list
	}
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	for _, existing := range list {
		if existing == u {
			return list
		}
	}
	return append(list, u)
}
