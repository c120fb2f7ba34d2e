package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// Page is what the client learns from loading the application page once at
// startup.
type Page struct {
	// Me is the signed-in username shown by the page, empty when the page
	// has no identity element.
	Me string
	// CSRFToken is the anti-forgery token the page load left in the jar.
	CSRFToken string
}

// Bootstrap loads the HTML page at pagePath (relative to the server URL). The
// server sets the CSRF cookie on this response, and the page's ".me" element
// names the current user.
func (c *Client) Bootstrap(ctx context.Context, pagePath string) (*Page, error) {
	if pagePath == "" {
		pagePath = "/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.origin.String()+pagePath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	limited := io.LimitReader(resp.Body, maxResponseSize)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(limited)
		return nil, &Error{Method: http.MethodGet, Path: pagePath, StatusCode: resp.StatusCode, Body: string(text)}
	}

	doc, err := html.Parse(limited)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	page := &Page{CSRFToken: c.CSRFToken()}
	if n := findByClass(doc, "me"); n != nil {
		if fields := strings.Fields(textContent(n)); len(fields) > 0 {
			page.Me = fields[0]
		}
	}
	return page, nil
}

// findByClass returns the first element in document order whose class
// attribute contains class.
func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return n
				}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByClass(child, class); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
