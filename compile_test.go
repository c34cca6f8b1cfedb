package helix_test

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/theplant/helix"
	"github.com/theplant/helix/memquery"
	"github.com/theplant/helix/model"
)

func find[T any](t *testing.T, req *helix.QueryRequest, items []T) []T {
	t.Helper()
	coll, err := helix.Query(req, helix.Collection[T](memquery.New(items)))
	require.NoError(t, err)
	got, err := coll.Find(context.Background())
	require.NoError(t, err)
	return got
}

func creators() []*model.Creator {
	return []*model.Creator{
		{CreatorID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), FirstName: "User1", LastName: "Last1", SortName: "b"},
		{CreatorID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), FirstName: "User2", LastName: "Last1", SortName: "a"},
		{CreatorID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), FirstName: "User3", LastName: "Other", SortName: "c"},
	}
}

func TestSchemaOf(t *testing.T) {
	s, err := helix.SchemaOf[*model.Source]()
	require.NoError(t, err)
	require.Equal(t, "SourceID", s.PrimaryField.Name)

	cases := map[string]helix.Kind{
		"source_id":        helix.KindGUID,
		"PublicationDate":  helix.KindDate,
		"publisher":        helix.KindString,
		"BRANCH":           helix.KindEnum,
		"version":          helix.KindInt,
		"Content_Type":     helix.KindEnum,
		"publication_date": helix.KindDate,
	}
	for name, kind := range cases {
		f := s.LookUpField(name)
		require.NotNil(t, f, name)
		require.Equal(t, kind, f.Kind, name)
	}
	require.Nil(t, s.LookUpField("Missing"))

	again, err := helix.SchemaOf[model.Source]()
	require.NoError(t, err)
	require.Same(t, s, again)

	_, err = helix.SchemaOf[int]()
	require.Error(t, err)
}

func TestFieldParse(t *testing.T) {
	s, err := helix.SchemaOf[model.Entity]()
	require.NoError(t, err)

	typ := s.LookUpField("type")
	v, ok := typ.Parse("jotun")
	require.True(t, ok)
	require.Equal(t, "Jotun", v)
	v, ok = typ.Parse("1")
	require.True(t, ok)
	require.Equal(t, "Aesir", v)
	_, ok = typ.Parse("Dragon")
	require.False(t, ok)
	_, ok = typ.Parse("99")
	require.False(t, ok)

	version := s.LookUpField("version")
	v, ok = version.Parse(" 42 ")
	require.True(t, ok)
	require.Equal(t, int64(42), v)
	_, ok = version.Parse("4.2")
	require.False(t, ok)

	id := s.LookUpField("entity_id")
	_, ok = id.Parse("not-a-guid")
	require.False(t, ok)

	src, err := helix.SchemaOf[model.Source]()
	require.NoError(t, err)
	v, ok = src.LookUpField("publication_date").Parse("2020-01-02")
	require.True(t, ok)
	require.True(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC).Equal(v.(time.Time)))
	_, ok = src.LookUpField("publication_date").Parse("yesterday")
	require.False(t, ok)
}

func TestCompile(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		plan, err := helix.Compile[*model.Creator](&helix.QueryRequest{})
		require.NoError(t, err)
		require.Empty(t, plan.Predicates)
		require.Equal(t, helix.DefaultSize, plan.Limit)
		require.Equal(t, 0, plan.Offset)
		require.Len(t, plan.OrderBy, 1)
		require.Equal(t, "CreatorID", plan.OrderBy[0].Field.Name)
		require.False(t, plan.OrderBy[0].Desc)
	})

	t.Run("nil request", func(t *testing.T) {
		plan, err := helix.Compile[model.Creator](nil)
		require.NoError(t, err)
		require.Equal(t, helix.DefaultSize, plan.Limit)
	})

	t.Run("unknown property and bad values are skipped", func(t *testing.T) {
		plan, err := helix.Compile[model.Source](&helix.QueryRequest{
			Filters: []helix.FilterClause{
				{Property: "nope", Operation: "equals", Value: "x"},
				{Property: "branch", Operation: "equals", Value: "Celtic"},
				{Property: "publication_date", Operation: "contains", Value: "not a date"},
				{Property: "publisher", Operation: "Contains", Value: "Press"},
			},
		})
		require.NoError(t, err)
		require.Len(t, plan.Predicates, 1)
		require.Equal(t, "Publisher", plan.Predicates[0].Field.Name)
		require.Equal(t, helix.OperationContains, plan.Predicates[0].Operation)
		require.Equal(t, "Press", plan.Predicates[0].Value)
	})

	t.Run("unsupported operation", func(t *testing.T) {
		cases := []helix.FilterClause{
			{Property: "branch", Operation: "greaterthan", Value: "Norse"},
			{Property: "publication_date", Operation: "notequals", Value: "2020-01-01"},
			{Property: "source_id", Operation: "contains", Value: "00000000-0000-0000-0000-000000000001"},
			{Property: "version", Operation: "contains", Value: "1"},
			{Property: "publisher", Operation: "greaterthan", Value: "a"},
			{Property: "publisher", Operation: "startswith", Value: "a"},
		}
		for _, fc := range cases {
			_, err := helix.Compile[model.Source](&helix.QueryRequest{Filters: []helix.FilterClause{fc}})
			require.Error(t, err, fc)
			require.True(t, errors.Is(err, helix.ErrUnsupportedOperation), fc)
			var uerr *helix.UnsupportedOperationError
			require.True(t, errors.As(err, &uerr))
			require.Equal(t, fc.Property, uerr.Property)
		}
	})

	t.Run("sort with primary key tie-breaker", func(t *testing.T) {
		plan, err := helix.Compile[model.Creator](&helix.QueryRequest{SortBy: "Last_Name", SortOrder: "DESC"})
		require.NoError(t, err)
		require.Equal(t, []string{"LastName", "CreatorID"}, lo.Map(plan.OrderBy, func(o helix.Order, _ int) string {
			return o.Field.Name
		}))
		require.True(t, plan.OrderBy[0].Desc)
		require.False(t, plan.OrderBy[1].Desc)
	})

	t.Run("unknown sort falls back to primary key", func(t *testing.T) {
		plan, err := helix.Compile[model.Creator](&helix.QueryRequest{SortBy: "shoe_size", SortOrder: "desc"})
		require.NoError(t, err)
		require.Len(t, plan.OrderBy, 1)
		require.Equal(t, "CreatorID", plan.OrderBy[0].Field.Name)
		require.True(t, plan.OrderBy[0].Desc)
	})
}

func TestQuery(t *testing.T) {
	t.Run("filter sort and paginate", func(t *testing.T) {
		got := find(t, &helix.QueryRequest{
			Filters:   []helix.FilterClause{{Property: "last_name", Operation: "equals", Value: "Last1"}},
			SortBy:    "Last_Name",
			SortOrder: "desc",
			Size:      1,
		}, creators())
		require.Len(t, got, 1)
		require.Equal(t, "Last1", got[0].LastName)
		require.Equal(t, "User1", got[0].FirstName)

		got = find(t, &helix.QueryRequest{
			Filters:   []helix.FilterClause{{Property: "last_name", Operation: "equals", Value: "Last1"}},
			SortBy:    "Last_Name",
			SortOrder: "desc",
			Size:      1,
			Offset:    1,
		}, creators())
		require.Len(t, got, 1)
		require.Equal(t, "User2", got[0].FirstName)
	})

	t.Run("filters are conjunctive", func(t *testing.T) {
		got := find(t, &helix.QueryRequest{
			Filters: []helix.FilterClause{
				{Property: "last_name", Operation: "equals", Value: "Last1"},
				{Property: "first_name", Operation: "notequals", Value: "User1"},
			},
		}, creators())
		require.Len(t, got, 1)
		require.Equal(t, "User2", got[0].FirstName)
	})

	t.Run("string contains", func(t *testing.T) {
		got := find(t, &helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "first_name", Operation: "contains", Value: "ser"}},
			SortBy:  "sort_name",
		}, creators())
		require.Equal(t, []string{"User2", "User1", "User3"}, lo.Map(got, func(c *model.Creator, _ int) string {
			return c.FirstName
		}))

		got = find(t, &helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "last_name", Operation: "doesnotcontain", Value: "Last"}},
		}, creators())
		require.Len(t, got, 1)
		require.Equal(t, "User3", got[0].FirstName)
	})

	t.Run("enum int date and guid", func(t *testing.T) {
		sources := []model.Source{
			{SourceID: uuid.New(), Branch: model.BranchNorse, Format: model.FormatEbook, Version: 1,
				PublicationDate: datatypes.Date(time.Date(2001, 5, 1, 0, 0, 0, 0, time.UTC))},
			{SourceID: uuid.New(), Branch: model.BranchAngloSaxon, Format: model.FormatVideo, Version: 3,
				PublicationDate: datatypes.Date(time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC))},
			{SourceID: uuid.New(), Branch: model.BranchNorse, Format: model.FormatVideo, Version: 2,
				PublicationDate: datatypes.Date(time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC))},
		}

		got := find(t, &helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "branch", Operation: "equals", Value: "norse"}},
			SortBy:  "version",
		}, sources)
		require.Equal(t, []int{1, 2}, lo.Map(got, func(s model.Source, _ int) int { return s.Version }))

		got = find(t, &helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "format", Operation: "notequals", Value: "4"}},
		}, sources)
		require.Len(t, got, 1)
		require.Equal(t, model.FormatEbook, got[0].Format)

		got = find(t, &helix.QueryRequest{
			Filters:   []helix.FilterClause{{Property: "version", Operation: "greaterthan", Value: "1"}},
			SortBy:    "version",
			SortOrder: "desc",
		}, sources)
		require.Equal(t, []int{3, 2}, lo.Map(got, func(s model.Source, _ int) int { return s.Version }))

		got = find(t, &helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "publication_date", Operation: "lessthan", Value: "2015-01-01"}},
			SortBy:  "publication_date",
		}, sources)
		require.Equal(t, []int{1, 2}, lo.Map(got, func(s model.Source, _ int) int { return s.Version }))

		got = find(t, &helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "source_id", Operation: "equals", Value: sources[1].SourceID.String()}},
		}, sources)
		require.Len(t, got, 1)
		require.Equal(t, 3, got[0].Version)
	})

	t.Run("offset past the end", func(t *testing.T) {
		got := find(t, &helix.QueryRequest{Offset: 10}, creators())
		require.Empty(t, got)
	})

	t.Run("source is not mutated", func(t *testing.T) {
		items := creators()
		before := lo.Map(items, func(c *model.Creator, _ int) string { return c.FirstName })
		find(t, &helix.QueryRequest{SortBy: "sort_name"}, items)
		require.Equal(t, before, lo.Map(items, func(c *model.Creator, _ int) string { return c.FirstName }))
	})

	t.Run("unsupported operation aborts", func(t *testing.T) {
		_, err := helix.Query(&helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "creator_id", Operation: "lessthan", Value: uuid.NewString()}},
		}, helix.Collection[*model.Creator](memquery.New(creators())))
		require.ErrorIs(t, err, helix.ErrUnsupportedOperation)
	})
}

func TestEnsureLimits(t *testing.T) {
	limits := helix.Limits{DefaultSize: 20, MaxSize: 50, MaxFilters: 2}

	req, err := helix.EnsureLimits(&helix.QueryRequest{Size: 0, Offset: -3}, limits)
	require.NoError(t, err)
	require.Equal(t, 20, req.Size)
	require.Equal(t, 0, req.Offset)

	in := &helix.QueryRequest{Size: 500}
	req, err = helix.EnsureLimits(in, limits)
	require.NoError(t, err)
	require.Equal(t, 50, req.Size)
	require.Equal(t, 500, in.Size)

	_, err = helix.EnsureLimits(&helix.QueryRequest{Filters: make([]helix.FilterClause, 3)}, limits)
	require.ErrorIs(t, err, helix.ErrTooManyFilters)

	req, err = helix.EnsureLimits(nil, helix.Limits{})
	require.NoError(t, err)
	require.Equal(t, helix.DefaultSize, req.Size)
}

func shuffledCreators() []*model.Creator {
	rows := []struct{ id, first, last string }{
		{"05", "Bo", "Ash"},
		{"02", "Al", "Elm"},
		{"07", "Bo", "Ash"},
		{"01", "Cy", "Oak"},
		{"04", "Al", "Elm"},
		{"06", "Di", "Ash"},
		{"03", "Cy", "Oak"},
	}
	return lo.Map(rows, func(r struct{ id, first, last string }, _ int) *model.Creator {
		return &model.Creator{
			CreatorID: uuid.MustParse("00000000-0000-0000-0000-0000000000" + r.id),
			FirstName: r.first,
			LastName:  r.last,
			SortName:  "x",
		}
	})
}

// expectedWindow sorts the full set by key, breaks ties by id, then slices.
func expectedWindow(items []*model.Creator, key func(*model.Creator) string, desc bool, offset, size int) []uuid.UUID {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b *model.Creator) int {
		n := strings.Compare(key(a), key(b))
		if desc {
			n = -n
		}
		return cmp.Or(n, bytes.Compare(a.CreatorID[:], b.CreatorID[:]))
	})
	if size <= 0 {
		size = helix.DefaultSize
	}
	start := min(max(offset, 0), len(sorted))
	end := min(start+size, len(sorted))
	return lo.Map(sorted[start:end], func(c *model.Creator, _ int) uuid.UUID { return c.CreatorID })
}

func TestWindowMatchesFullSort(t *testing.T) {
	items := shuffledCreators()
	keys := map[string]func(*model.Creator) string{
		"last_name":  func(c *model.Creator) string { return c.LastName },
		"First_Name": func(c *model.Creator) string { return c.FirstName },
		"sort_name":  func(c *model.Creator) string { return c.SortName },
		"creator_id": func(c *model.Creator) string { return c.CreatorID.String() },
		"":           func(c *model.Creator) string { return c.CreatorID.String() },
		"shoe":       func(c *model.Creator) string { return c.CreatorID.String() },
	}
	windows := []struct{ offset, size int }{
		{0, 1}, {0, 3}, {2, 3}, {5, 100}, {0, 0}, {6, 1}, {len(items), 2}, {len(items) + 3, 2},
	}

	for sortBy, key := range keys {
		for _, order := range []helix.SortOrder{helix.SortOrderAsc, helix.SortOrderDesc} {
			for _, w := range windows {
				req := &helix.QueryRequest{SortBy: sortBy, SortOrder: order, Offset: w.offset, Size: w.size}
				want := expectedWindow(items, key, order.Desc(), w.offset, w.size)

				first := find(t, req, items)
				second := find(t, req, items)
				require.Equal(t, first, second, "sortBy=%q order=%s window=%v", sortBy, order, w)
				require.Equal(t, want, lo.Map(first, func(c *model.Creator, _ int) uuid.UUID { return c.CreatorID }),
					"sortBy=%q order=%s window=%v", sortBy, order, w)
			}
		}
	}
}
