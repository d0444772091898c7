package browse

import (
	"strings"

	"github.com/pfassina/folio/internal/article"
)

// Filter returns the indices of records matching every whitespace-separated
// term of query. Terms match case-insensitively against the title, date,
// permalink, tags and categories. A "#" prefix restricts a term to tags and
// categories.
func Filter(recs []article.Record, query string) []int {
	terms := strings.Fields(strings.ToLower(query))
	out := make([]int, 0, len(recs))
	for i, rec := range recs {
		if matches(rec, terms) {
			out = append(out, i)
		}
	}
	return out
}

func matches(rec article.Record, terms []string) bool {
	for _, term := range terms {
		if tag, ok := strings.CutPrefix(term, "#"); ok {
			if !anyContains(rec.Tags, tag) && !anyContains(rec.Categories, tag) {
				return false
			}
			continue
		}
		if !strings.Contains(strings.ToLower(rec.Title), term) &&
			!strings.Contains(rec.Date, term) &&
			!strings.Contains(strings.ToLower(rec.Permalink), term) &&
			!anyContains(rec.Tags, term) &&
			!anyContains(rec.Categories, term) {
			return false
		}
	}
	return true
}

func anyContains(list []string, term string) bool {
	for _, s := range list {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}
