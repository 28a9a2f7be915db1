// ABOUTME: Content processing for article bodies
// ABOUTME: Detects HTML, converts to Markdown, and extracts cacheable image URLs

package content

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// htmlTagPattern matches common HTML tags
var htmlTagPattern = regexp.MustCompile(`<\s*(p|div|span|a|br|img|h[1-6]|ul|ol|li|table|tr|td|th|strong|em|b|i|code|pre|blockquote)[^>]*>`)

// markdownImagePattern matches the destination of ![alt](url "title") syntax.
var markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(\s*(<[^>]*>|[^)\s]+)`)

// IsHTML checks if content appears to be HTML
func IsHTML(content string) bool {
	if strings.Contains(content, "<!DOCTYPE") || strings.Contains(content, "<html") {
		return true
	}
	return htmlTagPattern.MatchString(content)
}

// Normalize converts HTML article bodies to Markdown so every stored article
// is rendering-ready. Markdown (or anything that doesn't look like HTML)
// passes through unchanged, as does content that fails conversion.
func Normalize(content string) string {
	if content == "" || !IsHTML(content) {
		return content
	}

	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(markdown)
}

// ExtractImageURLs scans article content for image references and returns the
// normalized, deduplicated set of cacheable URLs. Markdown image syntax is
// always scanned; when the content looks like HTML, <img src> attributes are
// collected as well. Protocol-relative URLs become https; data URIs and
// non-http(s) schemes are dropped. The result is sorted only so callers get a
// stable view; the set itself is unordered.
func ExtractImageURLs(content string) []string {
	seen := make(map[string]bool)

	for _, m := range markdownImagePattern.FindAllStringSubmatch(content, -1) {
		dest := strings.Trim(m[1], "<>")
		if u, ok := normalizeImageURL(dest); ok {
			seen[u] = true
		}
	}

	if IsHTML(content) {
		for _, src := range htmlImageSources(content) {
			if u, ok := normalizeImageURL(src); ok {
				seen[u] = true
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// htmlImageSources walks an HTML fragment collecting <img src> values.
// Extraction is best-effort; parse errors yield nothing.
func htmlImageSources(content string) []string {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var srcs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, attr := range n.Attr {
				if attr.Key == "src" && attr.Val != "" {
					srcs = append(srcs, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return srcs
}

// normalizeImageURL makes a raw image reference absolute and filters out
// anything that can't be fetched over http(s).
func normalizeImageURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}
