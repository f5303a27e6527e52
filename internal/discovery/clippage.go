package discovery

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParsedClipPage is everything Discovery extracts from a single clip page.
type ParsedClipPage struct {
	Title           string
	VideoURL        string
	DurationSeconds *int
	AgendaItems     []ParsedAgendaItem
}

// ParsedAgendaItem is a single cue point scraped from the page's agenda
// index, before it is attached to a discovered meeting.
type ParsedAgendaItem struct {
	ItemNumber   string
	Title        string
	StartSeconds int
	EndSeconds   *int
	SourceItemID *int64
}

var (
	videoURLInScript = regexp.MustCompile(`video_url\s*=\s*["']([^"']+)["']`)
	durationInScript = regexp.MustCompile(`(?i)duration["\s:]+(\d+)`)
	leadingItemNumber = regexp.MustCompile(`^(\d+\.?\d*\.?)\s*`)
)

// ParseClipPage extracts title, stream URL, duration, and agenda items from
// a clip page's raw HTML. Returns ok=false when the page doesn't look like
// a real meeting recording (empty title, or a platform placeholder page).
func ParseClipPage(rawHTML string) (ParsedClipPage, bool) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ParsedClipPage{}, false
	}

	var page ParsedClipPage
	var scriptText strings.Builder
	var indexPoints []*html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "source":
				if attrVal(n, "type") == "application/x-mpegurl" {
					if src := attrVal(n, "src"); src != "" {
						page.VideoURL = src
					}
				}
			case "script":
				if n.FirstChild != nil {
					scriptText.WriteString(n.FirstChild.Data)
					scriptText.WriteByte('\n')
				}
			case "div":
				if hasClass(n, "index-point") {
					indexPoints = append(indexPoints, n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if page.Title == "" {
		return ParsedClipPage{}, false
	}
	lowerTitle := strings.ToLower(page.Title)
	if strings.Contains(lowerTitle, "unavailable") || strings.Contains(lowerTitle, "not found") {
		return ParsedClipPage{}, false
	}

	if page.VideoURL == "" {
		if m := videoURLInScript.FindStringSubmatch(scriptText.String()); m != nil {
			page.VideoURL = m[1]
		}
	}

	if m := durationInScript.FindStringSubmatch(scriptText.String()); m != nil {
		if d, err := strconv.Atoi(m[1]); err == nil {
			page.DurationSeconds = &d
		}
	}

	page.AgendaItems = parseAgendaItems(indexPoints)
	return page, true
}

func parseAgendaItems(nodes []*html.Node) []ParsedAgendaItem {
	items := make([]ParsedAgendaItem, 0, len(nodes))
	for i, n := range nodes {
		startSeconds, _ := strconv.Atoi(attrVal(n, "time"))
		text := strings.TrimSpace(nodeText(n))
		if len(text) > 500 {
			text = text[:500]
		}

		itemNumber := ""
		title := text
		if m := leadingItemNumber.FindStringSubmatch(text); m != nil {
			itemNumber = strings.TrimRight(m[1], ".")
			title = strings.TrimSpace(text[len(m[0]):])
		}

		var sourceItemID *int64
		if id := attrVal(n, "data-id"); id != "" {
			if v, err := strconv.ParseInt(id, 10, 64); err == nil {
				sourceItemID = &v
			}
		}

		item := ParsedAgendaItem{
			ItemNumber:   itemNumber,
			Title:        title,
			StartSeconds: startSeconds,
			SourceItemID: sourceItemID,
		}
		items = append(items, item)

		if i > 0 {
			end := startSeconds
			items[i-1].EndSeconds = &end
		}
	}
	return items
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
