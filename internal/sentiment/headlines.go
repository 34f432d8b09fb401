package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/ivtracker/pkg/httputil"
	"github.com/wonny/ivtracker/pkg/logger"
)

const htmlAccept = "text/html,application/xhtml+xml"

// HeadlineScraper collects headline text from a news page.
// The URL template must contain {symbol}.
type HeadlineScraper struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	urlTemplate  string
	selector     string
	maxHeadlines int
}

// NewHeadlineScraper creates a scraper for urlTemplate using the CSS selector.
// httpClient is dedicated to the scraper; it is set to ask for HTML.
func NewHeadlineScraper(httpClient *httputil.Client, log *logger.Logger, urlTemplate, selector string) *HeadlineScraper {
	if selector == "" {
		selector = "h3"
	}
	return &HeadlineScraper{
		httpClient:   httpClient.WithHeader("Accept", htmlAccept),
		logger:       log.Module("headlines"),
		urlTemplate:  urlTemplate,
		selector:     selector,
		maxHeadlines: 15,
	}
}

// Name implements HeadlineSource
func (s *HeadlineScraper) Name() string { return "headlines" }

// Headlines implements HeadlineSource
func (s *HeadlineScraper) Headlines(ctx context.Context, symbol string) ([]string, error) {
	target := strings.ReplaceAll(s.urlTemplate, "{symbol}", url.QueryEscape(symbol))

	resp, err := s.httpClient.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch headlines: unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse headlines: %w", err)
	}

	var headlines []string
	doc.Find(s.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			headlines = append(headlines, text)
		}
		return len(headlines) < s.maxHeadlines
	})

	s.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(headlines),
	}).Debug("Headlines scraped")

	if len(headlines) == 0 {
		return nil, fmt.Errorf("no headlines matched %q for %s", s.selector, symbol)
	}

	return headlines, nil
}
