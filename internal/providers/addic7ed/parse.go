package addic7ed

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"substation/internal/media"
)

// Subtitle is one downloadable entry scraped from a show or movie page.
type Subtitle struct {
	// DownloadPath is the site-relative download link, unique per
	// subtitle, used as the candidate ID.
	DownloadPath    string
	Language        string
	Release         string
	Uploader        string
	Downloads       int
	HearingImpaired bool
}

// pageDocument wraps a parsed page so callers never touch html.Node.
type pageDocument struct {
	root *html.Node
}

func parsePage(r io.Reader) (*pageDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &pageDocument{root: root}, nil
}

var (
	versionRe   = regexp.MustCompile(`Version (.+?),`)
	downloadsRe = regexp.MustCompile(`([\d,]+) Downloads`)
	percentRe   = regexp.MustCompile(`\d+(?:\.\d+)?% Completed`)
)

// parseSubtitleBlocks extracts subtitles from a show or movie page. Each
// release version lives in its own table; the version header names the
// release, the rows below carry one language each.
func parseSubtitleBlocks(doc *pageDocument) []Subtitle {
	var subs []Subtitle
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" && hasClass(n, "tabel95") {
			if block := parseVersionBlock(n); len(block) > 0 {
				subs = append(subs, block...)
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc.root)
	return subs
}

// parseVersionBlock reads one release version table.
func parseVersionBlock(table *html.Node) []Subtitle {
	release := ""
	uploader := ""
	var subs []Subtitle

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "td" && hasClass(n, "NewsTitle"):
				text := textContent(n)
				if m := versionRe.FindStringSubmatch(text); m != nil {
					release = strings.TrimSpace(m[1])
				} else {
					release = strings.TrimSpace(text)
				}
			case n.Data == "a" && strings.HasPrefix(attrVal(n, "href"), "/user/"):
				if uploader == "" {
					uploader = strings.TrimSpace(textContent(n))
				}
			case n.Data == "tr":
				if sub, ok := parseSubtitleRow(n); ok {
					sub.Release = release
					sub.Uploader = uploader
					subs = append(subs, sub)
					return
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(table)
	return subs
}

// parseSubtitleRow reads one language row inside a version block. Rows
// still in progress carry a completion percentage and are skipped.
func parseSubtitleRow(tr *html.Node) (Subtitle, bool) {
	var sub Subtitle
	rowText := textContent(tr)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "td" && hasClass(n, "language"):
				sub.Language = strings.TrimSpace(textContent(n))
			case n.Data == "a" && isDownloadLink(attrVal(n, "href")):
				if sub.DownloadPath == "" {
					sub.DownloadPath = attrVal(n, "href")
				}
			case n.Data == "img" && strings.Contains(attrVal(n, "src"), "hi.jpg"):
				sub.HearingImpaired = true
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(tr)

	if sub.Language == "" || sub.DownloadPath == "" {
		return Subtitle{}, false
	}
	if percentRe.MatchString(rowText) {
		return Subtitle{}, false
	}
	if m := downloadsRe.FindStringSubmatch(rowText); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			sub.Downloads = n
		}
	}
	return sub, true
}

func isDownloadLink(href string) bool {
	return strings.HasPrefix(href, "/updated/") || strings.HasPrefix(href, "/original/")
}

// bestMovieLink picks the movie result whose link text best matches the
// searched title. Search result pages list close variants next to each
// other ("Road Movie", "Road Movie 2"), so the first hit is not always
// the right one. Falls back to the first link when no text resembles
// the title at all.
func bestMovieLink(doc *pageDocument, title string) string {
	var first, best string
	var bestScore float64
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attrVal(n, "href")
			if strings.HasPrefix(href, "/movie/") {
				if first == "" {
					first = href
				}
				if score := media.TitleSimilarity(title, textContent(n)); score > bestScore {
					best = href
					bestScore = score
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc.root)
	if best != "" {
		return best
	}
	return first
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attrVal(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
