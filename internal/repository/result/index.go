package result

import (
	"github.com/txstate-etc/featured-search-results/internal/db"
)

// buildIndex defines the FT index over result hashes. The keywords TEXT field
// serves prefix candidate retrieval; the rest back the advanced query surface.
func buildIndex(prefix string) *db.IndexDefinition {
	return db.NewIndex(indexName(prefix)).
		Prefix(resultPrefix(prefix)).
		Tag("url").
		Tag("title").
		TagWithOpts("tags", ",", false).
		Text("keywords").
		Numeric("priority").
		Tag("broken").
		Numeric("lasttested").
		Numeric("brokensince").
		MustBuild()
}

func indexName(prefix string) string {
	return prefix + "results:idx"
}

func resultPrefix(prefix string) string {
	return prefix + "result:"
}
