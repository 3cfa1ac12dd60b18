package queries

import (
	"cmp"
	"slices"
	"strings"
)

// TagSort orders the tag directory.
type TagSort string

const (
	TagSortPopular TagSort = "popular"
	TagSortName    TagSort = "name"
)

// ParseTagSort defaults to popular.
func ParseTagSort(s string) TagSort {
	if TagSort(strings.ToLower(strings.TrimSpace(s))) == TagSortName {
		return TagSortName
	}
	return TagSortPopular
}

// Tag is a directory entry. Questions counts the questions carrying the
// tag in the viewer's state.
type Tag struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Description string `json:"description"`
	Questions   int    `json:"questions"`
}

// TagDirectory lists known tags.
type TagDirectory struct {
	tags []Tag
}

// NewTagDirectory creates a directory over tags.
func NewTagDirectory(tags []Tag) *TagDirectory {
	return &TagDirectory{tags: slices.Clone(tags)}
}

// List merges the known tags with the tags used in src, filters by a
// case-insensitive match on name or description and orders by sort. Tags
// only seen in src are counted by usage.
func (d *TagDirectory) List(search string, sort TagSort, src QuestionSource) []Tag {
	usage := map[string]int{}
	var order []string
	if src != nil {
		for _, q := range src.Questions() {
			for _, t := range q.Tags {
				if _, seen := usage[t]; !seen {
					order = append(order, t)
				}
				usage[t]++
			}
		}
	}

	merged := make([]Tag, 0, len(d.tags)+len(order))
	known := make(map[string]bool, len(d.tags))
	for _, t := range d.tags {
		t.Questions = usage[t.Name]
		merged = append(merged, t)
		known[t.Name] = true
	}
	for _, name := range order {
		if !known[name] {
			merged = append(merged, Tag{Name: name, Count: usage[name], Questions: usage[name]})
		}
	}

	needle := strings.ToLower(search)
	out := []Tag{}
	for _, t := range merged {
		if needle == "" ||
			strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b Tag) int {
		if sort == TagSortName {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

// SeedTags returns the built-in tag directory.
func SeedTags() []Tag {
	return []Tag{
		{Name: "javascript", Count: 1234, Description: "For questions about JavaScript programming language"},
		{Name: "react", Count: 987, Description: "A JavaScript library for building user interfaces"},
		{Name: "nextjs", Count: 654, Description: "The React framework for production applications"},
		{Name: "typescript", Count: 543, Description: "A typed superset of JavaScript"},
		{Name: "nodejs", Count: 432, Description: "JavaScript runtime built on Chrome's V8 engine"},
		{Name: "python", Count: 876, Description: "A high-level programming language"},
		{Name: "css", Count: 321, Description: "Cascading Style Sheets for styling web pages"},
		{Name: "html", Count: 298, Description: "The standard markup language for web pages"},
		{Name: "vue", Count: 234, Description: "The Progressive JavaScript Framework"},
		{Name: "angular", Count: 198, Description: "Platform for building mobile and desktop web applications"},
		{Name: "express", Count: 167, Description: "Fast, unopinionated web framework for Node.js"},
		{Name: "mongodb", Count: 145, Description: "Document-oriented NoSQL database"},
		{Name: "sql", Count: 289, Description: "Structured Query Language for databases"},
		{Name: "git", Count: 156, Description: "Distributed version control system"},
		{Name: "docker", Count: 134, Description: "Platform for developing, shipping, and running applications"},
	}
}
