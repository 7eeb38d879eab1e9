package registry

import (
	"context"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/vinayprograms/toolreg/backend"
	"github.com/vinayprograms/toolreg/errors"
	"github.com/vinayprograms/toolreg/telemetry"
)

// Index is an in-memory full-text index over a Store.
type Index struct {
	index bleve.Index
}

// Hit is a single search result.
type Hit struct {
	Short string
	Score float64
}

// entryDocument is what gets indexed for each entry.
type entryDocument struct {
	Short    string   `json:"short"`
	Name     string   `json:"name"`
	Aliases  string   `json:"aliases"`
	Locators string   `json:"locators"`
	Kinds    []string `json:"kinds"`
}

// NewIndex indexes every entry of s.
func NewIndex(s *Store) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create search index")
	}

	batch := idx.NewBatch()
	for _, e := range s.All() {
		if err := batch.Index(e.Short, newEntryDocument(e)); err != nil {
			idx.Close()
			return nil, errors.Wrapf(err, "failed to index %s", e.Short)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, errors.Wrap(err, "failed to build search index")
	}

	return &Index{index: idx}, nil
}

func newEntryDocument(e Entry) entryDocument {
	locators := make([]string, 0, len(e.Backends))
	kinds := make([]string, 0, len(e.Backends))
	for _, full := range e.Backends {
		kind, locator := backend.SplitFull(full)
		locators = append(locators, locator)
		kinds = append(kinds, kind)
	}
	return entryDocument{
		Short:    e.Short,
		Name:     e.Short,
		Aliases:  strings.Join(e.Aliases, " "),
		Locators: strings.Join(locators, " "),
		Kinds:    kinds,
	}
}

// buildIndexMapping creates the bleve mapping for entry documents.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	docMapping.AddFieldMappingsAt("short", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("aliases", textFieldMapping)
	docMapping.AddFieldMappingsAt("locators", textFieldMapping)
	docMapping.AddFieldMappingsAt("kinds", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// Search returns up to limit entries matching text, best first. An exact
// short name ranks above prefix, alias and locator matches.
func (i *Index) Search(ctx context.Context, text string, limit int) ([]Hit, error) {
	return i.SearchKind(ctx, text, "", limit)
}

// SearchKind is Search restricted to entries declaring a backend of kind.
// An empty kind means no restriction.
func (i *Index) SearchKind(ctx context.Context, text string, kind backend.Kind, limit int) (hits []Hit, err error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.StartSearchSpan(ctx, text)
	defer func() { tracer.EndSearchSpan(span, len(hits), err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.InvalidInput("empty search query")
	}
	if limit <= 0 {
		limit = 10
	}

	q := buildQuery(text)
	if kind != "" {
		kindQuery := bleve.NewTermQuery(string(kind))
		kindQuery.SetField("kinds")

		boolQuery := bleve.NewBooleanQuery()
		boolQuery.AddMust(q)
		boolQuery.AddMust(kindQuery)
		q = boolQuery
	}

	searchReq := bleve.NewSearchRequestOptions(q, limit, 0, false)
	searchReq.SortBy([]string{"-_score", "_id"})

	result, err := i.index.SearchInContext(ctx, searchReq)
	if err != nil {
		return nil, errors.Wrapf(err, "search %q failed", text)
	}

	hits = make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, Hit{Short: h.ID, Score: h.Score})
	}
	return hits, nil
}

func buildQuery(text string) query.Query {
	exact := bleve.NewTermQuery(text)
	exact.SetField("short")
	exact.SetBoost(10)

	prefix := bleve.NewPrefixQuery(strings.ToLower(text))
	prefix.SetField("name")
	prefix.SetBoost(3)

	name := bleve.NewMatchQuery(text)
	name.SetField("name")
	name.SetBoost(2)

	aliases := bleve.NewMatchQuery(text)
	aliases.SetField("aliases")
	aliases.SetBoost(2)

	locators := bleve.NewMatchQuery(text)
	locators.SetField("locators")

	return bleve.NewDisjunctionQuery(exact, prefix, name, aliases, locators)
}

// Count returns the number of indexed entries.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}
