package scraper

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"net/url"
	"strings"

	"campusconnect-backend/models"

	"github.com/gocolly/colly/v2"
)

// crawlMaxDepth bounds the generic crawl to the seed page plus one hop
const crawlMaxDepth = 2

// crawlGeneric walks same-host pages the specialized collectors did not
// claim and stores them under the generic category
func (h *Harvester) crawlGeneric(ctx context.Context) error {
	base, err := url.Parse(h.baseURL)
	if err != nil {
		return err
	}

	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.MaxDepth(h.maxDepth),
		colly.AllowedDomains(base.Hostname()),
		colly.UserAgent(UserAgent),
	)
	c.SetRequestTimeout(fetchTimeout)
	if h.fetcher.AllowsInsecure(base.Hostname()) {
		c.WithTransport(&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		if !strings.Contains(r.Headers.Get("Content-Type"), "text/html") {
			return
		}
		pageURL := r.Request.URL.String()
		if h.seen[pageURL] {
			return
		}

		title, text, err := ExtractHTML(r.Body)
		if err != nil || len(text) < MinContentLength {
			return
		}
		if title == "" {
			title = "Generic HTML Page"
		}

		h.addDocument(&models.Document{
			Title:    title,
			Content:  text,
			Category: models.CategoryGenericHTML,
			Source:   pageURL,
			DocType:  models.DocTypeHTMLPage,
		})
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		// Off-domain and already-visited links are rejected by the collector
		_ = e.Request.Visit(e.Request.AbsoluteURL(href))
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Warning: crawl error for %s: %v", r.Request.URL, err)
		h.skipped++
	})

	if err := c.Visit(h.baseURL + "/"); err != nil {
		return err
	}
	c.Wait()

	return ctx.Err()
}
