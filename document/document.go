// Package document loads a raw credit report export into a queryable tree.
// Both supported source formats (HTML portal exports and text extracted from
// PDFs upstream) resolve to the same Document interface, so field extraction
// never depends on the source format.
package document

import (
	"errors"
	"strings"
)

// ErrNoReportStructure is the fatal outcome for a document with no
// recognizable report structure anywhere. Callers must distinguish it from a
// successfully parsed report with a clean file.
var ErrNoReportStructure = errors.New("document: no recognizable report structure")

// Cell is one table cell: its text plus the CSS class tokens carried by the
// markup. Payment-history grids encode late-severity in class tokens.
type Cell struct {
	Text    string
	Classes []string
}

// Row is one label-keyed table row. Label is the first cell's text; Cells are
// the remaining columns, one per bureau in three-column tables.
type Row struct {
	Label string
	Cells []Cell
}

// Table is an ordered set of rows.
type Table struct {
	Rows []Row
}

// Section is a named region of the report containing zero or more tables.
type Section struct {
	Name   string
	Tables []Table
	text   string
}

// Text returns the section's flattened text.
func (s *Section) Text() string {
	return s.text
}

// Document is a queryable report tree.
type Document interface {
	// FindSection locates a section by name, case-insensitively and ignoring
	// punctuation. Missing sections are an expected condition.
	FindSection(name string) (*Section, bool)
	// Sections returns every section in document order.
	Sections() []*Section
	// AllTables returns every table in the document, for the whole-document
	// fallback scan when the expected section container is missing.
	AllTables() []Table
	// Text returns the document's flattened text.
	Text() string
}

// Ingest parses raw report content, auto-detecting the source format. It
// fails only when nothing in the document resembles report structure.
func Ingest(content string) (Document, error) {
	var doc Document
	var err error
	if looksLikeHTML(content) {
		doc, err = ParseHTML(content)
	} else {
		doc, err = ParseText(content)
	}
	if err != nil {
		return nil, err
	}
	if !hasStructure(doc) {
		return nil, ErrNoReportStructure
	}
	return doc, nil
}

// hasStructure reports whether anything in the document resembles report
// structure: a named section, or at least one label/value row. Plain prose
// produces neither, and must fail distinctly rather than parse as a clean
// file.
func hasStructure(doc Document) bool {
	for _, sec := range doc.Sections() {
		if sec.Name != "" {
			return true
		}
	}
	for _, table := range doc.AllTables() {
		for _, row := range table.Rows {
			if len(row.Cells) > 0 {
				return true
			}
		}
	}
	return false
}

func looksLikeHTML(content string) bool {
	head := strings.ToLower(content)
	if len(head) > 2048 {
		head = head[:2048]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<table") || strings.Contains(head, "<div")
}

// matchName compares a section name against a query, lower-cased with all
// non-alphanumerics removed, so "AccountHistory" matches "account history".
func matchName(name, query string) bool {
	n := squash(name)
	q := squash(query)
	if n == "" || q == "" {
		return false
	}
	return strings.Contains(n, q) || strings.Contains(q, n)
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type treeDocument struct {
	sections []*Section
	text     string
}

func (d *treeDocument) FindSection(name string) (*Section, bool) {
	for _, sec := range d.sections {
		if matchName(sec.Name, name) {
			return sec, true
		}
	}
	return nil, false
}

func (d *treeDocument) Sections() []*Section {
	return d.sections
}

func (d *treeDocument) AllTables() []Table {
	var out []Table
	for _, sec := range d.sections {
		out = append(out, sec.Tables...)
	}
	return out
}

func (d *treeDocument) Text() string {
	return d.text
}
