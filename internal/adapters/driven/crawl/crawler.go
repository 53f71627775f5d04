// Package crawl provides the HTTP crawler adapter. It fetches a
// source's entry page, follows same-host links one level deep, and
// turns each page into a plain-text crawl record for the pipeline.
package crawl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
	"github.com/grantwatch/grantwatch-cli/internal/logger"
)

// Ensure Crawler implements the interface.
var _ driven.Crawler = (*Crawler)(nil)

// Default configuration values.
const (
	DefaultUserAgent  = "grantwatch/1.0 (+https://github.com/grantwatch/grantwatch-cli)"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxPages   = 10
	DefaultRate       = 1.0 // requests per second per crawler
	DefaultMaxRetries = 3
)

// Config holds crawler configuration.
type Config struct {
	// UserAgent identifies the crawler to remote sites.
	UserAgent string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxPages caps how many pages one Fetch visits, entry page
	// included (default: 10).
	MaxPages int

	// RequestsPerSecond throttles outgoing requests (default: 1).
	RequestsPerSecond float64

	// MaxRetries is how often a failed request is retried with
	// exponential backoff (default: 3).
	MaxRetries int
}

// Crawler fetches monitored pages over plain HTTP. Dynamic rendering
// is out of scope; pages are parsed as served.
type Crawler struct {
	client     *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxPages   int
	maxRetries int
}

// NewCrawler creates a rate-limited HTTP crawler.
func NewCrawler(cfg Config) *Crawler {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRate
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	return &Crawler{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		userAgent:  cfg.UserAgent,
		maxPages:   cfg.MaxPages,
		maxRetries: cfg.MaxRetries,
	}
}

// Fetch crawls the source's entry page and the same-host pages it
// links to, up to the page budget. Linked pages are best-effort: a
// page that fails after retries is logged and skipped.
func (c *Crawler) Fetch(ctx context.Context, source domain.Source) ([]domain.CrawlResult, error) {
	entryURL, err := url.Parse(source.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad source url %q", domain.ErrInvalidInput, source.URL)
	}

	entry, links, err := c.fetchPage(ctx, entryURL)
	if err != nil {
		return nil, fmt.Errorf("fetch entry page %s: %w", source.URL, err)
	}

	results := []domain.CrawlResult{entry}
	seen := map[string]bool{canonical(entryURL): true}

	for _, link := range links {
		if len(results) >= c.maxPages {
			break
		}
		target := canonical(link)
		if seen[target] || link.Host != entryURL.Host {
			continue
		}
		seen[target] = true

		page, _, err := c.fetchPage(ctx, link)
		if err != nil {
			logger.Warn("Skipping %s: %v", link, err)
			continue
		}
		results = append(results, page)
	}

	logger.Info("Crawled %d pages from %s", len(results), source.Name)
	return results, nil
}

// fetchPage downloads and extracts one page, returning its crawl
// record and the links it carries.
func (c *Crawler) fetchPage(ctx context.Context, pageURL *url.URL) (domain.CrawlResult, []*url.URL, error) {
	body, mime, err := c.get(ctx, pageURL.String())
	if err != nil {
		return domain.CrawlResult{}, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return domain.CrawlResult{}, nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	text := extractText(doc)
	sum := sha256.Sum256([]byte(text))

	result := domain.CrawlResult{
		URL:         pageURL.String(),
		Title:       extractTitle(doc),
		FetchedAt:   time.Now().UTC().Format(time.RFC3339),
		ContentHash: hex.EncodeToString(sum[:]),
		MIME:        mime,
		RawText:     text,
	}

	return result, extractLinks(doc, pageURL), nil
}

// get performs one rate-limited GET with retries and exponential
// backoff, returning the response body and content type.
func (c *Crawler) get(ctx context.Context, target string) (string, string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return "", "", ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", "", err
		}

		body, mime, err := c.getOnce(ctx, target)
		if err == nil {
			return body, mime, nil
		}
		lastErr = err
		logger.Debug("Request %s attempt %d/%d failed: %v", target, attempt+1, c.maxRetries, err)
	}
	return "", "", lastErr
}

func (c *Crawler) getOnce(ctx context.Context, target string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", "", fmt.Errorf("%s: %w", target, domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%s: unexpected status %d", target, resp.StatusCode)
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if mime == "" {
		mime = "text/html"
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}
	return string(body), mime, nil
}

// extractTitle prefers the <title> element, falling back to the first
// heading.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// extractText renders the page body as plain text. Boilerplate
// elements are dropped; line structure is kept so the chunker can see
// paragraph boundaries.
func extractText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	if body.Length() == 0 {
		return ""
	}
	body.Find("script, style, noscript, iframe, nav, header, footer, aside").Remove()

	var lines []string
	body.Find("h1, h2, h3, h4, h5, h6, p, li, td, th, blockquote, pre").Each(func(_ int, sel *goquery.Selection) {
		line := strings.Join(strings.Fields(sel.Text()), " ")
		if line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		// No block structure at all; fall back to the raw body text.
		return strings.Join(strings.Fields(body.Text()), " ")
	}
	return strings.Join(lines, "\n\n")
}

// extractLinks resolves every anchor against the page URL, keeping
// http(s) targets only.
func extractLinks(doc *goquery.Document, base *url.URL) []*url.URL {
	var links []*url.URL
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		links = append(links, resolved)
	})
	return links
}

// canonical normalises a URL for the visited set: fragments never
// change server content.
func canonical(u *url.URL) string {
	clean := *u
	clean.Fragment = ""
	return clean.String()
}
