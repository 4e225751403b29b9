// Package crawler walks a site breadth-first and collects the external
// base domains it links to. Pages on the start URL's base domain feed the
// frontier; everything else is recorded and not followed.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
)

type Crawler struct {
	Client   *http.Client
	MaxPages int // page budget per crawl
	Workers  int // concurrent fetches per batch
}

func New() *Crawler {
	return &Crawler{
		Client:   &http.Client{Timeout: 10 * time.Second},
		MaxPages: 100,
		Workers:  5,
	}
}

type fetchResult struct {
	internal []string
	external []string
}

// ExternalDomains crawls from startURL and returns the sorted unique base
// domains of every off-site link found within the page budget.
func (c *Crawler) ExternalDomains(ctx context.Context, startURL string) ([]string, error) {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, fmt.Errorf("invalid start url %q", startURL)
	}
	baseDomain := BaseDomain(start.Host)
	if baseDomain == "" {
		return nil, fmt.Errorf("no base domain for %q", startURL)
	}

	visited := map[string]struct{}{}
	external := map[string]struct{}{}

	normalized := NormalizeURL(startURL)
	queue := []string{normalized}
	visited[normalized] = struct{}{}

	for len(queue) > 0 && len(visited) <= c.MaxPages {
		if ctx.Err() != nil {
			break
		}

		// Take one batch off the frontier and fetch it concurrently.
		n := c.Workers
		if n > len(queue) {
			n = len(queue)
		}
		batch := queue[:n]
		queue = queue[n:]

		var (
			mu      sync.Mutex
			results []fetchResult
			wg      sync.WaitGroup
		)
		for _, pageURL := range batch {
			wg.Add(1)
			go func(pageURL string) {
				defer wg.Done()
				res := c.fetchPage(ctx, pageURL, baseDomain)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}(pageURL)
		}
		wg.Wait()

		for _, res := range results {
			for _, ext := range res.external {
				external[ext] = struct{}{}
			}
			for _, link := range res.internal {
				if _, seen := visited[link]; seen || len(visited) >= c.MaxPages {
					continue
				}
				visited[link] = struct{}{}
				queue = append(queue, link)
			}
		}
	}

	return SimplifyExternalLinks(external), nil
}

// fetchPage downloads one page and splits its links into same-base-domain
// and external. Fetch or parse failures yield an empty result; a single
// bad page never aborts the crawl.
func (c *Crawler) fetchPage(ctx context.Context, pageURL, baseDomain string) fetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fetchResult{}
	}
	req.Header.Set("User-Agent", "techboard-linkscan/1.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fetchResult{}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fetchResult{}
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "text/html") && !strings.Contains(ct, "application/xhtml") {
		return fetchResult{}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return fetchResult{}
	}

	var out fetchResult
	for _, href := range extractHrefs(resp.Body) {
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		if abs.Host == "" {
			continue
		}
		linkDomain := BaseDomain(abs.Host)
		if linkDomain == "" {
			continue
		}
		normalized := NormalizeURL(abs.String())
		if linkDomain == baseDomain {
			out.internal = append(out.internal, normalized)
		} else {
			out.external = append(out.external, normalized)
		}
	}
	return out
}

// extractHrefs returns the href attribute of every anchor in the document.
func extractHrefs(body io.Reader) []string {
	var hrefs []string
	z := html.NewTokenizer(body)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return hrefs
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if len(name) != 1 || name[0] != 'a' || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" && len(val) > 0 {
					hrefs = append(hrefs, string(val))
				}
				if !more {
					break
				}
			}
		}
	}
}
