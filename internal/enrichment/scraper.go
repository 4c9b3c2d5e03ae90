package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const maxDescriptionLen = 500

// Scraper fetches a short company description from a website, preferring
// the meta description over page text.
type Scraper struct {
	httpClient *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Describe downloads the page and extracts a description snippet.
func (s *Scraper) Describe(ctx context.Context, website string) (string, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return "", fmt.Errorf("empty website")
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "outreach-backend/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch website: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("website returned %d", resp.StatusCode)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse website html: %w", err)
	}

	description := extractDescription(root)
	if description == "" {
		return "", fmt.Errorf("no description found")
	}
	return truncate(description, maxDescriptionLen), nil
}

// extractDescription walks the document for, in order of preference, the
// meta description, the OpenGraph description, the title, and the first
// paragraph.
func extractDescription(root *html.Node) string {
	var meta, og, title, paragraph string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				name, property, content := attrs(n)
				if content != "" {
					if name == "description" && meta == "" {
						meta = content
					}
					if property == "og:description" && og == "" {
						og = content
					}
				}
			case "title":
				if title == "" {
					title = textContent(n)
				}
			case "p":
				if paragraph == "" {
					paragraph = textContent(n)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	for _, candidate := range []string{meta, og, title, paragraph} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

func attrs(n *html.Node) (name, property, content string) {
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "name":
			name = strings.ToLower(attr.Val)
		case "property":
			property = strings.ToLower(attr.Val)
		case "content":
			content = attr.Val
		}
	}
	return name, property, content
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
