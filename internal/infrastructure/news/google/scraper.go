package google

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"

	"golang.org/x/net/html"
)

const (
	DefaultSearchURL = "https://www.google.com/search"
	DefaultMaxItems  = 4
)

// snippetClasses are the result containers on the search page: headline blocks
// first, then the compact news cards.
var snippetClasses = []string{
	"n0jPhd ynAwRc tNxQIb nDgy9d",
	"IJl0Z",
}

var _ output.NewsPort = (*Scraper)(nil)

type Scraper struct {
	fetcher   output.PageFetcher
	searchURL string
	maxItems  int
	logger    output.LoggerPort
}

type Config struct {
	SearchURL string
	MaxItems  int
	Logger    output.LoggerPort
}

func NewScraper(fetcher output.PageFetcher, cfg Config) *Scraper {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	return &Scraper{
		fetcher:   fetcher,
		searchURL: cfg.SearchURL,
		maxItems:  cfg.MaxItems,
		logger:    cfg.Logger,
	}
}

func (s *Scraper) Search(ctx context.Context, query string) ([]string, error) {
	u := s.searchURL + "?q=" + url.QueryEscape(query)

	page, err := s.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	items, err := ExtractSnippets(page, s.maxItems)
	if err != nil {
		return nil, fmt.Errorf("%w: parse search page: %w", entity.ErrUpstream, err)
	}

	if s.logger != nil {
		s.logger.Debug("News scraped", "query", query, "items", len(items))
	}
	return items, nil
}

// ExtractSnippets returns the text of every snippet container, grouped by class in
// snippetClasses order, capped at max.
func ExtractSnippets(page string, max int) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	var out []string
	for _, class := range snippetClasses {
		walk(doc, func(n *html.Node) bool {
			if n.Type != html.ElementNode || n.Data != "div" || attr(n, "class") != class {
				return true
			}
			if text := textOf(n); text != "" {
				out = append(out, text)
			}
			return false
		})
	}

	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// walk visits n depth-first; visit returns false to skip a node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style") {
			return false
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
