package openlibrary

import "strings"

// Metadata is the canonical record assembled from the edition, author and
// work resources.
type Metadata struct {
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	CatalogKey    string   `json:"catalogKey"`
	WorkKey       string   `json:"workKey,omitempty"`
	CoverURL      string   `json:"coverUrl,omitempty"`
	Description   string   `json:"description,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	PublishDate   string   `json:"publishDate,omitempty"`
	Publishers    []string `json:"publishers,omitempty"`
	NumberOfPages int      `json:"numberOfPages,omitempty"`
}

// Author returns the display author, comma-joined when there are several.
func (m Metadata) Author() string {
	return strings.Join(m.Authors, ", ")
}

type ref struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// bookEntry matches one value of api/books?jscmd=details.
type bookEntry struct {
	BibKey  string  `json:"bib_key"`
	Details edition `json:"details"`
}

type edition struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Authors       []ref    `json:"authors"`
	Publishers    []string `json:"publishers"`
	PublishDate   string   `json:"publish_date"`
	NumberOfPages int      `json:"number_of_pages"`
	Works         []ref    `json:"works"`
	Description   any      `json:"description"` // string or {type, value}
	Subjects      []string `json:"subjects"`
	Covers        []int    `json:"covers"`
}

// authorDetails matches authors/{key}.json
type authorDetails struct {
	Name         string `json:"name"`
	PersonalName string `json:"personal_name"`
}

// work matches works/{key}.json
type work struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Description any      `json:"description"`
	Subjects    []string `json:"subjects"`
}

func extractDescription(v any) string {
	switch d := v.(type) {
	case string:
		return strings.TrimSpace(d)
	case map[string]any:
		if s, ok := d["value"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
