// Package sales scrapes today's sales volume from the steamdt.com item page.
package sales

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

const (
	DefaultSiteURL = "https://steamdt.com"
	// VolumeLabel marks the text node followed by the volume <span>.
	VolumeLabel = "今日成交"
)

// ErrVolumeNotFound means the page had no "今日成交" label with a following span.
var ErrVolumeNotFound = errors.New("sales volume not found on page")

type Scraper struct {
	client *resty.Client
}

func NewScraper(siteURL, userAgent string, timeout time.Duration) *Scraper {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(siteURL, "/")).
		SetTimeout(timeout)
	if userAgent != "" {
		c.SetHeader("User-Agent", userAgent)
	}
	return &Scraper{client: c}
}

// SalesVolume implements ingest.VolumeSource.
func (s *Scraper) SalesVolume(ctx context.Context, marketHashName string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get("/cs2/" + url.PathEscape(marketHashName))
	if err != nil {
		return "", fmt.Errorf("fetch item page: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("item page http %d", resp.StatusCode())
	}
	return ExtractVolume(bytes.NewReader(resp.Body()), VolumeLabel)
}

// ExtractVolume finds the first text node containing label and returns the
// trimmed text of the next sibling <span>.
func ExtractVolume(r io.Reader, label string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse item page: %w", err)
	}

	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, label) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if found == nil {
		return "", ErrVolumeNotFound
	}

	// 标签可能直接是文本节点，也可能包在元素里
	for _, start := range []*html.Node{found, found.Parent} {
		if start == nil {
			continue
		}
		for sib := start.NextSibling; sib != nil; sib = sib.NextSibling {
			if sib.Type == html.ElementNode && sib.Data == "span" {
				if text := strings.TrimSpace(textOf(sib)); text != "" {
					return text, nil
				}
				return "", ErrVolumeNotFound
			}
		}
	}
	return "", ErrVolumeNotFound
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}
