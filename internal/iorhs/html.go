package iorhs

import (
	"bytes"
	"strings"

	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/normalize"
	"golang.org/x/net/html"
)

// parseResults extracts the registration matching the queried epithet
// from the register's HTML result page. Result rows carry the grex
// name in the first cell and the seed (pod) and pollen parents in the
// following two.
func parseResults(
	body []byte,
	genus, epithet string,
) (gnrecon.Registration, error) {
	res := gnrecon.Registration{Genus: genus, Epithet: epithet}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return res, LookupError(epithet, err)
	}

	for _, cells := range tableRows(doc) {
		if len(cells) < 3 {
			continue
		}
		if !strings.EqualFold(
			strings.TrimSpace(cells[0]), epithet,
		) {
			continue
		}
		res.Matched = true
		res.PodParent = splitParent(cells[1], genus)
		res.PollenParent = splitParent(cells[2], genus)
		return res, nil
	}
	return res, nil
}

// tableRows collects the cell texts of every table row in a document.
func tableRows(doc *html.Node) [][]string {
	var res [][]string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode &&
					(c.Data == "td" || c.Data == "th") {
					cells = append(cells, nodeText(c))
				}
			}
			if len(cells) > 0 {
				res = append(res, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return res
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

// splitParent turns a register parent cell ("C. insigne", "Sleeping
// Beauty") into a (genus, epithet) pair, expanding a genus
// abbreviation against the queried genus.
func splitParent(cell, genus string) [2]string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return [2]string{}
	}
	fields := strings.Fields(cell)
	if len(fields) > 1 && strings.HasSuffix(fields[0], ".") {
		pg := normalize.ExpandGenus(fields[0], genus)
		return [2]string{pg, strings.Join(fields[1:], " ")}
	}
	return [2]string{genus, cell}
}
