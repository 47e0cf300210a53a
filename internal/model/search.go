package model

// ClauseKind selects how a search clause compares its field to its value.
type ClauseKind int

const (
	// ClauseTerm matches the field exactly.
	ClauseTerm ClauseKind = iota
	// ClauseMatch matches text case-insensitively.
	ClauseMatch
	// ClauseRangeFrom matches field >= value (inclusive).
	ClauseRangeFrom
	// ClauseRangeTo matches field <= value (inclusive).
	ClauseRangeTo
)

type SearchClause struct {
	Field string
	Kind  ClauseKind
	Value any
}

// SearchQuery is a conjunction of clauses. An empty Must list is an
// unfiltered query.
type SearchQuery struct {
	Must []SearchClause
}

func (q *SearchQuery) Add(field string, kind ClauseKind, value any) {
	q.Must = append(q.Must, SearchClause{Field: field, Kind: kind, Value: value})
}
