package iocatalog

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gnames/gnrecon/pkg/schema"
	"golang.org/x/net/html"
)

var (
	reViewPath  = regexp.MustCompile(`/plants/view/(\d+)(/|$)`)
	reSelection = regexp.MustCompile(` '(.+)'$`)
)

// parseListing extracts catalog records from a plant listing page.
// Each record is an anchor to a plant view page; its text carries the
// display name ("Orchid (Cymbidium insigne 'Alba')"). The genus
// argument marks genus-only common names; pass empty when the listing
// spans genera.
func parseListing(
	body []byte,
	baseURL, genus string,
) ([]*schema.CatalogRecord, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var res []*schema.CatalogRecord
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if rec := recordFromAnchor(n, baseURL, genus); rec != nil {
				res = append(res, rec)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return res, nil
}

func recordFromAnchor(
	n *html.Node,
	baseURL, genus string,
) *schema.CatalogRecord {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
		}
	}
	m := reViewPath.FindStringSubmatch(href)
	if m == nil {
		return nil
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}

	text := nodeText(n)
	if text == "" {
		return nil
	}
	common, botanical := splitDisplay(text)
	if botanical == "" {
		return nil
	}

	rec := &schema.CatalogRecord{
		FullName:      botanical,
		URL:           absURL(baseURL, href),
		ID:            id,
		BotanicalName: botanical,
		Selection:     schema.TypeSelection(),
	}
	if sm := reSelection.FindStringSubmatch(botanical); sm != nil {
		rec.BotanicalName = strings.TrimSpace(
			botanical[:len(botanical)-len(sm[0])],
		)
		rec.Selection = schema.NamedSelection(sm[1])
	}

	switch {
	case common == "":
		rec.CommonNameMissing = true
	case genus != "" && strings.EqualFold(common, genus):
		rec.CommonNameIsGenus = true
		rec.CommonNames = []string{common}
	default:
		rec.CommonNames = []string{common}
	}
	return rec
}

// splitDisplay separates the common name from the parenthesized
// botanical name. A display without parentheses is botanical only.
func splitDisplay(text string) (string, string) {
	open := strings.Index(text, "(")
	if open < 0 || !strings.HasSuffix(text, ")") {
		return "", strings.TrimSpace(text)
	}
	common := strings.TrimSpace(text[:open])
	botanical := strings.TrimSpace(text[open+1 : len(text)-1])
	return common, botanical
}

func absURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") ||
		strings.HasPrefix(href, "https://") {
		return href
	}
	return fmt.Sprintf(
		"%s/%s",
		strings.TrimSuffix(baseURL, "/"),
		strings.TrimPrefix(href, "/"),
	)
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
