package document

import (
	"regexp"
	"strings"
)

// columnSplit separates text-report columns: a tab or a run of two or more
// spaces. Upstream PDF text extraction preserves column alignment this way.
var columnSplit = regexp.MustCompile(`\t+| {2,}`)

// ParseText builds a Document from plain text extracted from a PDF report.
//
// The layout convention: a short line with no column separator and no value
// columns opens a section; every following line with columns becomes a row in
// that section's table, first column as the label. Consecutive rows form one
// table per section.
func ParseText(content string) (Document, error) {
	doc := &treeDocument{text: normalizeSpace(content)}

	var current *Section
	var currentTable *Table

	flush := func() {
		if current != nil && currentTable != nil && len(currentTable.Rows) > 0 {
			current.Tables = append(current.Tables, *currentTable)
		}
		currentTable = nil
	}

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimRight(rawLine, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		fields := splitColumns(trimmed)
		if len(fields) == 1 && isSectionHeader(trimmed) {
			flush()
			if current != nil {
				doc.sections = append(doc.sections, current)
			}
			current = &Section{
				Name: strings.TrimSuffix(trimmed, ":"),
				text: "",
			}
			continue
		}

		if current == nil {
			// Row data before any header: collect under an unnamed section so
			// the whole-document fallback scan can still reach it.
			current = &Section{Name: ""}
		}
		current.text += trimmed + " "

		if currentTable == nil {
			currentTable = &Table{}
		}
		row := Row{Label: strings.TrimSuffix(fields[0], ":")}
		for _, f := range fields[1:] {
			row.Cells = append(row.Cells, Cell{Text: f})
		}
		currentTable.Rows = append(currentTable.Rows, row)
	}
	flush()
	if current != nil {
		doc.sections = append(doc.sections, current)
	}

	for _, sec := range doc.sections {
		sec.text = strings.TrimSpace(sec.text)
	}
	return doc, nil
}

func splitColumns(line string) []string {
	parts := columnSplit.Split(line, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isSectionHeader recognizes the short standalone lines the portals print
// between report regions ("Account History", "INQUIRIES", "Personal Info:").
func isSectionHeader(line string) bool {
	if len(line) > 60 {
		return false
	}
	if strings.HasSuffix(line, ":") {
		return true
	}
	letters := 0
	upper := 0
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			letters++
		}
		if r >= 'A' && r <= 'Z' {
			letters++
			upper++
		}
	}
	if letters == 0 {
		return false
	}
	// All-caps headers, or title-case lines of at most four words.
	if upper == letters {
		return true
	}
	words := strings.Fields(line)
	if len(words) > 4 {
		return false
	}
	for _, w := range words {
		r := rune(w[0])
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
