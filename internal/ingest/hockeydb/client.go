package hockeydb

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// BaseURL for HockeyDB player pages
	BaseURL = "https://www.hockeydb.com/ihdb/stats/pdisplay.php"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval keeps us polite towards hockeydb.com
	MinRequestInterval = time.Second

	// DefaultPageTimeout bounds a single page load
	DefaultPageTimeout = 30 * time.Second
)

// textViewXPath matches the link that switches a player page to its text rendering
const textViewXPath = `//a[contains(text(), 'View as text') or contains(text(), 'Text-only')]`

// ClientConfig configures the headless browser client
type ClientConfig struct {
	BaseURL     string
	Headless    bool
	Interval    time.Duration
	PageTimeout time.Duration
}

// Page is the rendered content of one player page
type Page struct {
	URL  string
	HTML string
	Text string
}

// Client fetches HockeyDB pages through headless Chrome with rate limiting
type Client struct {
	baseURL     string
	interval    time.Duration
	pageTimeout time.Duration

	mu          sync.Mutex
	lastRequest time.Time

	// Chromedp context for headless browser
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a new HockeyDB scraper client
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = MinRequestInterval
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = DefaultPageTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		baseURL:     cfg.BaseURL,
		interval:    cfg.Interval,
		pageTimeout: cfg.PageTimeout,
		allocCtx:    allocCtx,
		cancel:      cancel,
	}, nil
}

// Close releases resources
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// PlayerURL builds the page URL for a HockeyDB player id
func (c *Client) PlayerURL(playerID int) string {
	return fmt.Sprintf("%s?pid=%d", c.baseURL, playerID)
}

// FetchPlayer fetches one player page by HockeyDB id
func (c *Client) FetchPlayer(ctx context.Context, playerID int) (*Page, error) {
	return c.fetchWithRateLimit(ctx, c.PlayerURL(playerID))
}

// FetchPlayerText fetches a player page and returns its copy-paste text rendering
func (c *Client) FetchPlayerText(ctx context.Context, playerID int) (string, error) {
	page, err := c.FetchPlayer(ctx, playerID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(page.Text) != "" {
		return page.Text, nil
	}
	return ExtractText(page.HTML)
}

// fetchWithRateLimit fetches content with automatic rate limiting
func (c *Client) fetchWithRateLimit(ctx context.Context, url string) (*Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		if wait := c.interval - time.Since(c.lastRequest); wait > 0 {
			log.Printf("Rate limiting: waiting %v before next request", wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	page, err := c.fetch(ctx, url)
	c.lastRequest = time.Now()

	return page, err
}

// fetch loads the page, switches to the text view when offered and captures
// both the HTML and the rendered body text.
func (c *Client) fetch(ctx context.Context, url string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, c.pageTimeout)
	defer cancel()

	// stop the browser tab if the caller gives up first
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-browserCtx.Done():
		}
	}()

	log.Printf("Fetching: %s", url)

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("chromedp error: %w", err)
	}

	// The text view link is optional; pages already in text mode do not have it.
	linkCtx, linkCancel := context.WithTimeout(browserCtx, 5*time.Second)
	if err := chromedp.Run(linkCtx,
		chromedp.Click(textViewXPath, chromedp.BySearch, chromedp.NodeVisible),
		chromedp.Sleep(2*time.Second),
	); err != nil {
		log.Printf("  text view not available, using current page")
	}
	linkCancel()

	page := &Page{URL: url}
	if err := chromedp.Run(browserCtx,
		chromedp.OuterHTML(`html`, &page.HTML, chromedp.ByQuery),
		chromedp.Evaluate(`document.body.innerText`, &page.Text),
	); err != nil {
		return nil, fmt.Errorf("chromedp error: %w", err)
	}

	if page.HTML == "" {
		return nil, fmt.Errorf("empty HTML content returned")
	}

	log.Printf("OK - Fetched %d characters", len(page.Text))
	return page, nil
}

// blockElements end the current text line when rendered
var blockElements = map[string]bool{
	"p": true, "div": true, "table": true, "thead": true, "tbody": true,
	"ul": true, "ol": true, "li": true, "section": true, "header": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// ExtractText renders saved page HTML into the tab-delimited text a browser
// produces on select-all/copy: one line per table row, cells joined with tabs.
// Blank lines are dropped so the name and position stay on the first two lines.
func ExtractText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	writeText(&b, doc.Find("body"))

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Trim(line, " "); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func writeText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		name := goquery.NodeName(node)
		switch {
		case name == "#text":
			b.WriteString(collapseSpace(node.Text()))
		case name == "br":
			b.WriteString("\n")
		case name == "tr":
			cells := node.ChildrenFiltered("td, th").Map(func(_ int, cell *goquery.Selection) string {
				return strings.TrimSpace(collapseSpace(cell.Text()))
			})
			b.WriteString("\n")
			b.WriteString(strings.Join(cells, "\t"))
			b.WriteString("\n")
		case blockElements[name]:
			b.WriteString("\n")
			writeText(b, node)
			b.WriteString("\n")
		default:
			writeText(b, node)
		}
	})
}

// collapseSpace folds whitespace runs inside a text node into single spaces
func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	lead := strings.IndexFunc(s, func(r rune) bool { return r != ' ' && r != '\n' && r != '\t' && r != '\r' }) > 0
	trail := strings.LastIndexFunc(s, func(r rune) bool { return r != ' ' && r != '\n' && r != '\t' && r != '\r' }) < len(s)-1

	out := strings.Join(strings.Fields(s), " ")
	if lead {
		out = " " + out
	}
	if trail {
		out += " "
	}
	return out
}
