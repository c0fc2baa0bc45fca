package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"shelfapi/internal/isbn"
)

const (
	UnknownAuthor = "Unknown Author"
	UnknownTitle  = "Unknown Title"

	MaxSubjects = 20

	authorConcurrency = 4
)

// reservedSubjectPrefixes mark catalog bookkeeping tags that are not real subjects.
var reservedSubjectPrefixes = []string{
	"nyt:",
	"collectionid:",
	"ia:",
	"accessible book",
	"protected daisy",
	"in library",
}

// Lookup resolves an ISBN into Metadata.
//
// Only the edition call is fatal: a missing record yields ErrNotFound and
// transport or status failures yield ErrUpstream. Author resolution, the
// cover probe and work enrichment degrade silently.
func (c *Client) Lookup(ctx context.Context, rawISBN string) (*Metadata, error) {
	code := isbn.Normalize(rawISBN)
	if code == "" {
		return nil, fmt.Errorf("%w: empty isbn", ErrNotFound)
	}

	ed, err := c.edition(ctx, code)
	if err != nil {
		return nil, err
	}

	meta := &Metadata{
		ISBN:          code,
		Title:         strings.TrimSpace(ed.Title),
		CatalogKey:    ed.Key,
		Description:   extractDescription(ed.Description),
		Subjects:      cleanSubjects(ed.Subjects),
		PublishDate:   ed.PublishDate,
		Publishers:    ed.Publishers,
		NumberOfPages: ed.NumberOfPages,
	}
	if meta.Title == "" {
		meta.Title = UnknownTitle
	}
	if len(ed.Works) > 0 {
		meta.WorkKey = ed.Works[0].Key
	}

	meta.Authors = c.resolveAuthors(ctx, ed.Authors)
	meta.CoverURL = c.ProbeCover(ctx, code, c.coverSize)

	if meta.WorkKey != "" && (meta.Description == "" || len(meta.Subjects) == 0) {
		c.enrichFromWork(ctx, meta)
	}

	return meta, nil
}

func (c *Client) edition(ctx context.Context, code string) (*edition, error) {
	bibkey := "ISBN:" + code
	u := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=details", c.baseURL, url.QueryEscape(bibkey))

	var res map[string]bookEntry
	if err := c.get(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("%w: isbn %s: %v", ErrUpstream, code, err)
	}

	entry, ok := res[bibkey]
	if !ok {
		return nil, fmt.Errorf("%w: isbn %s", ErrNotFound, code)
	}
	return &entry.Details, nil
}

// Author fetches a single author record. key is "/authors/OL..A" or "OL..A".
func (c *Client) Author(ctx context.Context, key string) (string, error) {
	id := strings.TrimPrefix(key, "/authors/")
	if id == "" {
		return "", errors.New("empty author key")
	}
	u := fmt.Sprintf("%s/authors/%s.json", c.baseURL, url.PathEscape(id))

	var res authorDetails
	if err := c.getOnce(ctx, u, &res); err != nil {
		return "", err
	}
	name := strings.TrimSpace(res.Name)
	if name == "" {
		name = strings.TrimSpace(res.PersonalName)
	}
	if name == "" {
		return "", fmt.Errorf("author %s has no name", id)
	}
	return name, nil
}

func (c *Client) resolveAuthors(ctx context.Context, refs []ref) []string {
	if len(refs) == 0 {
		return []string{UnknownAuthor}
	}

	names := make([]string, len(refs))
	var g errgroup.Group
	g.SetLimit(authorConcurrency)
	for i, r := range refs {
		g.Go(func() error {
			name, err := c.Author(ctx, r.Key)
			if err != nil {
				c.logger.Warn("author lookup failed", "author_key", r.Key, "error", err)
				name = strings.TrimSpace(r.Name)
			}
			if name == "" {
				name = UnknownAuthor
			}
			names[i] = name
			return nil
		})
	}
	_ = g.Wait()
	return names
}

// Work fetches a work record. key is "/works/OL..W" or "OL..W".
func (c *Client) Work(ctx context.Context, key string) (*work, error) {
	id := strings.TrimPrefix(key, "/works/")
	if id == "" {
		return nil, errors.New("empty work key")
	}
	u := fmt.Sprintf("%s/works/%s.json", c.baseURL, url.PathEscape(id))

	var res work
	if err := c.getOnce(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) enrichFromWork(ctx context.Context, meta *Metadata) {
	w, err := c.Work(ctx, meta.WorkKey)
	if err != nil {
		c.logger.Warn("work enrichment failed", "isbn", meta.ISBN, "work_key", meta.WorkKey, "error", err)
		return
	}
	if meta.Description == "" {
		meta.Description = extractDescription(w.Description)
	}
	meta.Subjects = cleanSubjects(mergeStringSlices(meta.Subjects, w.Subjects))
}

// cleanSubjects drops reserved tags, removes duplicates and caps the list.
func cleanSubjects(subjects []string) []string {
	out := make([]string, 0, len(subjects))
	seen := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" || reserved(s) || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == MaxSubjects {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func reserved(subject string) bool {
	lower := strings.ToLower(subject)
	for _, p := range reservedSubjectPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// mergeStringSlices merges two string slices, removing duplicates.
func mergeStringSlices(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
