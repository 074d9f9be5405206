package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// Extracted is the plain text pulled from one source, plus what little
// metadata the source carries.
type Extracted struct {
	Title string
	Text  string
	Pages int
}

// ExtractFile reads a local document. PDFs go through the PDF text
// extractor; anything else is treated as plain text.
func ExtractFile(path string) (Extracted, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Extracted{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Extracted{
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Text:  string(data),
	}, nil
}

func extractPDF(path string) (Extracted, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return Extracted{}, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Extracted{}, fmt.Errorf("extracting page %d of %s: %w", i, path, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return Extracted{
		Title: strings.TrimSuffix(filepath.Base(path), ".pdf"),
		Text:  sb.String(),
		Pages: reader.NumPage(),
	}, nil
}

// ExtractURL fetches a page and strips it down to its readable text.
func ExtractURL(ctx context.Context, client *http.Client, url string) (Extracted, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Extracted{}, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Extracted{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Extracted{}, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}
	return extractHTML(resp.Body, url)
}

func extractHTML(r io.Reader, url string) (Extracted, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Extracted{}, fmt.Errorf("parsing html from %s: %w", url, err)
	}

	var title string
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				sb.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if title == "" {
		title = url
	}
	return Extracted{Title: title, Text: strings.TrimSpace(sb.String())}, nil
}
