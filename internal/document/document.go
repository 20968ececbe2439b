// Package document holds the bulletin article model and corpus loading.
package document

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Image is an illustration attached to an article.
type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Document is one bulletin article. A zero Date means the date is unknown.
type Document struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date,omitzero"`
	Rubric string    `json:"rubric,omitempty"`
	Title  string    `json:"title,omitempty"`
	Body   string    `json:"body,omitempty"`
	Images []Image   `json:"images,omitempty"`
}

// HasDate reports whether the article is dated.
func (d *Document) HasDate() bool {
	return !d.Date.IsZero()
}

// HasImage reports whether at least one image has a URL.
func (d *Document) HasImage() bool {
	for _, img := range d.Images {
		if img.URL != "" {
			return true
		}
	}
	return false
}

// Collection maps document ids to documents.
type Collection map[string]*Document

// Add inserts or replaces d.
func (c Collection) Add(d *Document) {
	c[d.ID] = d
}

// IDs returns the document ids in lexicographic order.
func (c Collection) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IDFromFilename derives a document id from its source file name.
func IDFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate accepts ISO dates, French dd/mm/yyyy dates and RFC 3339
// timestamps. Dates without zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

type rawDocument struct {
	ID     string  `json:"id"`
	File   string  `json:"file"`
	Date   string  `json:"date"`
	Rubric string  `json:"rubric"`
	Title  string  `json:"title"`
	Body   string  `json:"body"`
	Images []Image `json:"images"`
}

// ReadJSONL reads one JSON document per line. The id falls back to the
// "file" field when absent.
func ReadJSONL(r io.Reader) (Collection, error) {
	docs := make(Collection)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var raw rawDocument
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		doc := &Document{
			ID:     raw.ID,
			Rubric: raw.Rubric,
			Title:  raw.Title,
			Body:   raw.Body,
			Images: raw.Images,
		}
		if doc.ID == "" && raw.File != "" {
			doc.ID = IDFromFilename(raw.File)
		}
		if doc.ID == "" {
			return nil, fmt.Errorf("line %d: document without id", line)
		}
		if raw.Date != "" {
			t, err := ParseDate(raw.Date)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			doc.Date = t
		}
		docs.Add(doc)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
