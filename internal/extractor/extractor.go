// Package extractor pulls a title, plain text, and outbound links out of a
// fetched HTML page body. It is deliberately regex-based rather than a full
// DOM parse: the crawl pipeline's tag-stripping and charset-detection
// behavior is specified at the level of these exact regexes, matching the
// system this was distilled from.
package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var (
	titleRegex    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tagRegex      = regexp.MustCompile(`(?s)<[^>]*>`)
	charsetRegex  = regexp.MustCompile(`(?is)<meta[^>]*charset\s*=\s*["']?([^"'>\s]+)`)
	linkRegex     = regexp.MustCompile(`(?is)<a[^>]*href\s*=\s*["']([^"']*)["'][^>]*>`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// ExtractTitle returns the first case-insensitive <title>...</title> capture
// with any residual HTML tags stripped, or "" if no title tag is present.
func ExtractTitle(html string) string {
	m := titleRegex.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(collapseWhitespace(stripTags(m[1])))
}

// ExtractText detects the declared charset, strips tags, transcodes non-UTF-8
// content, and collapses whitespace into the plain-text extract of a page.
func ExtractText(html string) string {
	encoding := detectCharset(html)

	stripped := stripTags(html)

	if encoding != "UTF-8" && encoding != "UTF8" {
		if transcoded, ok := transcodeToUTF8(stripped, encoding); ok {
			stripped = transcoded
		}
		// Transcoding failure: fall back to the original bytes, per spec.
	}

	return strings.TrimSpace(collapseWhitespace(stripped))
}

// ExtractLinks returns every <a href="..."> target in html, resolved against
// baseUrl, skipping empty, javascript:, mailto:, and fragment-only hrefs.
func ExtractLinks(html, baseURL string) []string {
	matches := linkRegex.FindAllStringSubmatch(html, -1)

	links := make([]string, 0, len(matches))
	for _, m := range matches {
		href := m[1]
		if href == "" ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "#") {
			continue
		}
		links = append(links, ResolveURL(baseURL, href))
	}
	return links
}

// ResolveURL implements the three resolution rules shared by link extraction
// and redirect handling: absolute URLs pass through unchanged, URLs
// beginning with "/" replace the path of baseURL, and everything else is
// resolved relative to baseURL's directory.
func ResolveURL(baseURL, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}

	schemeEnd := strings.Index(baseURL, "://")
	if schemeEnd < 0 {
		return ref
	}
	authorityStart := schemeEnd + 3

	if strings.HasPrefix(ref, "/") {
		pathStart := strings.Index(baseURL[authorityStart:], "/")
		if pathStart < 0 {
			return baseURL + ref
		}
		return baseURL[:authorityStart+pathStart] + ref
	}

	lastSlash := strings.LastIndex(baseURL, "/")
	var dir string
	if lastSlash > schemeEnd+2 {
		dir = baseURL[:lastSlash+1]
	} else if strings.HasSuffix(baseURL, "/") {
		dir = baseURL
	} else {
		dir = baseURL + "/"
	}
	return dir + ref
}

func stripTags(html string) string {
	return tagRegex.ReplaceAllString(html, " ")
}

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

func detectCharset(html string) string {
	m := charsetRegex.FindStringSubmatch(html)
	if m == nil {
		return "UTF-8"
	}
	return strings.ToUpper(strings.TrimSpace(m[1]))
}

// transcodeToUTF8 converts text from the declared encoding into UTF-8,
// reporting ok=false if the encoding name is unknown or the conversion
// fails so the caller can fall back to the original bytes.
func transcodeToUTF8(text, encodingName string) (string, bool) {
	enc, err := htmlindex.Get(strings.ToLower(encodingName))
	if err != nil {
		return "", false
	}

	decoded, _, err := transform.String(enc.NewDecoder(), text)
	if err != nil {
		return "", false
	}
	return decoded, true
}
