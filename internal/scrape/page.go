package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rolzy/mealsteals/internal/apperr"
)

// Link text that suggests a page could hold specials.
var dealPageKeywords = []string{
	"special", "specials", "deal", "deals",
	"promotion", "promotions", "offer", "offers",
	"happy hour", "weekly", "daily", "discount",
	"featured", "what", "restaurant",
}

var socialDomains = []string{"facebook.com", "instagram.com", "twitter.com"}

// Elements stripped before text extraction, including the usual cookie
// consent noise.
var strippedSelectors = []string{
	"script", "style", "svg", "header", "nav", "footer",
	"div[class*='cookie']", "div[id*='cookie']",
	"div[class*='consent']", "div[id*='consent']",
	"div[class*='gdpr']", "div[id*='gdpr']",
	"#cookieConsent", "#gdprConsent",
	".cookie-banner", ".consent-banner",
}

const maxDealPages = 5

// PageFetcher downloads restaurant pages and reduces them to clean text
// suitable for the extractor.
type PageFetcher struct {
	client *http.Client
}

func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (f *PageFetcher) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MealSteals/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.Transient("fetching page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, apperr.Transient("page unavailable", fmt.Errorf("http %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Permanent("page fetch failed", fmt.Errorf("http %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperr.Permanent("parsing page html", err)
	}
	return doc, nil
}

// FetchText returns the page's visible text with boilerplate stripped.
func (f *PageFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	doc, err := f.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return extractText(doc), nil
}

// FindDealPages fetches the landing page and returns links whose anchor
// text suggests a specials page, resolved against the base URL. The
// landing page itself is always the first entry.
func (f *PageFetcher) FindDealPages(ctx context.Context, siteURL string) ([]string, error) {
	doc, err := f.fetch(ctx, siteURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, err
	}

	pages := []string{siteURL}
	seen := map[string]bool{siteURL: true}

	doc.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			return true
		}
		if isSocialLink(href) {
			return true
		}

		text := strings.ToLower(strings.TrimSpace(anchor.Text()))
		if !containsKeyword(text) {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref).String()

		if !seen[resolved] {
			seen[resolved] = true
			pages = append(pages, resolved)
		}
		return len(pages) < maxDealPages
	})

	return pages, nil
}

func extractText(doc *goquery.Document) string {
	clone := doc.Selection
	for _, selector := range strippedSelectors {
		clone.Find(selector).Remove()
	}

	var parts []string
	clone.Find("body").Each(func(_ int, body *goquery.Selection) {
		parts = append(parts, body.Text())
	})

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func containsKeyword(text string) bool {
	for _, keyword := range dealPageKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func isSocialLink(href string) bool {
	for _, domain := range socialDomains {
		if strings.Contains(href, domain) {
			return true
		}
	}
	return false
}
