package toolkit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/AlpaslanErdag/Orchestrator/tool"
)

const (
	defaultScraperTimeout   = 15 * time.Second
	defaultScraperUserAgent = "AgentFlowLocalScraper/1.0"
	maxScrapeBodyBytes      = 4 << 20
)

// ScraperOptions configure the web scraper tool.
type ScraperOptions struct {
	// Timeout bounds the whole fetch including redirects.
	Timeout time.Duration
	// UserAgent is sent when the caller supplies none.
	UserAgent string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// NewWebScraperTool returns the web_scraper_tool: it fetches a URL and
// extracts the main text content, preferring a main or article section over
// the whole body and stripping script and style blocks.
func NewWebScraperTool(optFns ...func(o *ScraperOptions)) *tool.FunctionTool {
	opts := ScraperOptions{
		Timeout:   defaultScraperTimeout,
		UserAgent: defaultScraperUserAgent,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return tool.NewFunctionTool(
		"web_scraper_tool",
		"Fetch a web page and return the main textual content for further analysis.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "The HTTP/HTTPS URL to scrape.",
				},
				"user_agent": map[string]any{
					"type":        "string",
					"description": "Optional custom User-Agent header value.",
				},
			},
			"required": []string{"url"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			url, _ := args["url"].(string)
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return nil, &tool.ToolError{
					Tool:    "web_scraper_tool",
					Message: fmt.Sprintf("unsupported URL %q: only http and https are allowed", url),
					Code:    tool.CodeValidation,
				}
			}
			userAgent := opts.UserAgent
			if ua, _ := args["user_agent"].(string); ua != "" {
				userAgent = ua
			}
			text, err := scrape(ctx, client, url, userAgent)
			if err != nil {
				return nil, err
			}
			return text, nil
		},
	)
}

func scrape(ctx context.Context, client *http.Client, url, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxScrapeBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", url, err)
	}
	return ExtractText(doc), nil
}

// ExtractText pulls readable text from a parsed HTML document. It prefers
// the first main or article element, falls back to body, skips script, style
// and noscript subtrees and collapses blank lines.
func ExtractText(doc *html.Node) string {
	root := findFirst(doc, "main")
	if root == nil {
		root = findFirst(doc, "article")
	}
	if root == nil {
		root = findFirst(doc, "body")
	}
	if root == nil {
		root = doc
	}

	var b strings.Builder
	collectText(root, &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

func findFirst(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, name); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString("\n")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
