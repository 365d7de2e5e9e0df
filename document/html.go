package document

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ParseHTML builds a Document from an HTML report export. Sections come from
// two conventions the supported portals use: container elements carrying an
// id, and headings followed by tables. Tables claimed by an id container are
// not re-attributed to a heading.
func ParseHTML(content string) (Document, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	doc := &treeDocument{text: normalizeSpace(gq.Text())}
	claimedNodes := make(map[*html.Node]bool)

	// Containers with an id attribute that hold at least one table.
	gq.Find("div[id], section[id]").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		tables := collectTables(sel, claimedNodes)
		if len(tables) == 0 {
			return
		}
		doc.sections = append(doc.sections, &Section{
			Name:   id,
			Tables: tables,
			text:   normalizeSpace(sel.Text()),
		})
	})

	// Headings: the section spans until the next heading of any level.
	gq.Find("h1, h2, h3, h4, h5").Each(func(_ int, heading *goquery.Selection) {
		name := normalizeSpace(heading.Text())
		if name == "" {
			return
		}
		span := heading.NextUntil("h1, h2, h3, h4, h5")
		var tables []Table
		var text strings.Builder
		span.Each(func(_ int, sel *goquery.Selection) {
			tables = append(tables, collectTables(sel, claimedNodes)...)
			text.WriteString(sel.Text())
			text.WriteString("\n")
		})
		if len(tables) == 0 {
			return
		}
		doc.sections = append(doc.sections, &Section{
			Name:   name,
			Tables: tables,
			text:   normalizeSpace(text.String()),
		})
	})

	// Tables outside every id container and heading span still carry report
	// data on some exports. They land in an unnamed section so the
	// whole-document fallback scan reaches them.
	if orphans := collectTables(gq.Selection, claimedNodes); len(orphans) > 0 {
		doc.sections = append(doc.sections, &Section{Tables: orphans})
	}

	return doc, nil
}

// collectTables reads every unclaimed <table> under sel, including sel
// itself, marking nodes claimed so a table belongs to exactly one section.
func collectTables(sel *goquery.Selection, claimedNodes map[*html.Node]bool) []Table {
	var tables []Table
	targets := sel.Find("table")
	if goquery.NodeName(sel) == "table" {
		targets = targets.AddSelection(sel)
	}
	targets.Each(func(_ int, tsel *goquery.Selection) {
		node := tsel.Get(0)
		if claimedNodes[node] {
			return
		}
		claimedNodes[node] = true
		tables = append(tables, parseTable(tsel))
	})
	return tables
}

func parseTable(tsel *goquery.Selection) Table {
	var table Table
	tsel.Find("tr").Each(func(_ int, rsel *goquery.Selection) {
		var row Row
		rsel.Children().Each(func(i int, csel *goquery.Selection) {
			name := goquery.NodeName(csel)
			if name != "td" && name != "th" {
				return
			}
			cell := Cell{
				Text:    normalizeSpace(csel.Text()),
				Classes: classTokens(csel),
			}
			if i == 0 {
				row.Label = cell.Text
				return
			}
			row.Cells = append(row.Cells, cell)
		})
		if row.Label != "" || len(row.Cells) > 0 {
			table.Rows = append(table.Rows, row)
		}
	})
	return table
}

// classTokens gathers class tokens from the cell and its descendants; the
// payment-grid severity token is sometimes on an inner span rather than the
// td itself.
func classTokens(sel *goquery.Selection) []string {
	var tokens []string
	if raw, ok := sel.Attr("class"); ok {
		tokens = append(tokens, strings.Fields(raw)...)
	}
	sel.Find("[class]").Each(func(_ int, inner *goquery.Selection) {
		if raw, ok := inner.Attr("class"); ok {
			tokens = append(tokens, strings.Fields(raw)...)
		}
	})
	return tokens
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
