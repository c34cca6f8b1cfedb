package helix

import "strings"

const DefaultSize = 100

type FilterClause struct {
	Property  string `json:"property"`
	Operation string `json:"operation"`
	Value     string `json:"value"`
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func (o SortOrder) Desc() bool {
	return strings.EqualFold(strings.TrimSpace(string(o)), string(SortOrderDesc))
}

// QueryRequest describes a filtered, sorted and paginated read of one entity
// type. Filters are combined with AND in the order given. An empty SortBy
// sorts by the primary key; an empty Fields returns whole entities.
type QueryRequest struct {
	Filters   []FilterClause `json:"filters"`
	SortBy    string         `json:"sortBy"`
	SortOrder SortOrder      `json:"sortOrder"`
	Size      int            `json:"size"`
	Offset    int            `json:"offset"`
	Fields    string         `json:"fields"`
}

func NewQueryRequest() *QueryRequest {
	return &QueryRequest{
		SortOrder: SortOrderAsc,
		Size:      DefaultSize,
	}
}
