package httpapi_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/theplant/helix"
	"github.com/theplant/helix/httpapi"
	"github.com/theplant/helix/model"
	"github.com/theplant/helix/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	t      *testing.T
	repos  *store.Repositories
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	repos, err := store.NewMemoryRepositories(helix.Limits{DefaultSize: 100, MaxSize: 1000, MaxFilters: 3})
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &server{t: t, repos: repos, router: httpapi.New(repos, log)}
}

func (s *server) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) seedCreators() []*model.Creator {
	s.t.Helper()
	creators := []*model.Creator{
		{FirstName: "User1", LastName: "Last1"},
		{FirstName: "User2", LastName: "Last1"},
		{FirstName: "User3", LastName: "Last2"},
	}
	for _, c := range creators {
		require.NoError(s.t, s.repos.Creators.Create(context.Background(), c))
	}
	return creators
}

func TestCRUD(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/v1/entities", map[string]any{
		"name": "Thor",
		"type": "Aesir",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Entity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEqual(t, uuid.Nil, created.EntityID)
	require.Equal(t, 1, created.Version)

	path := "/api/v1/entities/" + created.EntityID.String()
	w = s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"entity_id":"`+created.EntityID.String()+`","name":"Thor","description":"","type":"Aesir","version":1}`, w.Body.String())

	created.Description = "Thunderer"
	w = s.do(http.MethodPut, path, created)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPut, path, created)
	require.Equal(t, http.StatusConflict, w.Code)

	other := created
	other.EntityID = uuid.New()
	w = s.do(http.MethodPut, path, other)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path, `{"description":"Odinson"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Entity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "Odinson", got.Description)
	require.Equal(t, 3, got.Version)

	w = s.do(http.MethodPatch, path, `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/entities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []model.Entity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, 1)

	w = s.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPut, path, created)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/entities/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, "/api/v1/entities", "{")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuery(t *testing.T) {
	s := newServer(t)
	s.seedCreators()

	t.Run("json body", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/creators/query", helix.QueryRequest{
			Filters:   []helix.FilterClause{{Property: "last_name", Operation: "equals", Value: "Last1"}},
			SortBy:    "Last_Name",
			SortOrder: "desc",
			Size:      1,
		})
		require.Equal(t, http.StatusOK, w.Code)
		var got []model.Creator
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		require.Equal(t, "Last1", got[0].LastName)
	})

	t.Run("projected", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/creators/query", helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "last_name", Operation: "equals", Value: "Last1"}},
			SortBy:  "first_name",
			Fields:  "First_Name, nope",
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `[{"First_Name":"User1"},{"First_Name":"User2"}]`, w.Body.String())
	})

	t.Run("query string", func(t *testing.T) {
		q := url.Values{}
		q.Add("filter", "first_name:contains:User")
		q.Add("filter", "last_name:notequals:Last2")
		q.Set("sortBy", "first_name")
		q.Set("sortOrder", "desc")
		q.Set("fields", "first_name")
		w := s.do(http.MethodGet, "/api/v1/creators/query?"+q.Encode(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `[{"first_name":"User2"},{"first_name":"User1"}]`, w.Body.String())

		w = s.do(http.MethodGet, "/api/v1/creators/query?filter=first_name", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty result is not found", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/creators/query", helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "last_name", Operation: "equals", Value: "Nobody"}},
		})
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unsupported operation is a bad request", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/creators/query", helix.QueryRequest{
			Filters: []helix.FilterClause{{Property: "last_name", Operation: "greaterthan", Value: "A"}},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "greaterthan")
	})

	t.Run("too many filters", func(t *testing.T) {
		fc := helix.FilterClause{Property: "last_name", Operation: "equals", Value: "Last1"}
		w := s.do(http.MethodPost, "/api/v1/creators/query", helix.QueryRequest{
			Filters: []helix.FilterClause{fc, fc, fc, fc},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown filters are ignored", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/creators/query", `{"filters":[{"property":"shoe","operation":"equals","value":"9"}]}`)
		require.Equal(t, http.StatusOK, w.Code)
		var got []model.Creator
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 3)
	})
}

func TestParseFilter(t *testing.T) {
	fc, err := httpapi.ParseFilter("url:contains:https://example.com")
	require.NoError(t, err)
	require.Equal(t, helix.FilterClause{Property: "url", Operation: "contains", Value: "https://example.com"}, fc)

	_, err = httpapi.ParseFilter("url:contains")
	require.Error(t, err)
}

func TestEnumsAndHealth(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/v1/enums/branches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"id":0,"name":"Norse"},{"id":1,"name":"AngloSaxon"},{"id":2,"name":"Continental"},{"id":3,"name":"PanGermanic"}]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/enums/colors", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/enums", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "subjects")

	w = s.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "helix_http_requests_total")
}

func TestValidation(t *testing.T) {
	s := newServer(t)

	t.Run("enum must be a declared name", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/entities", map[string]any{"name": "Odin", "type": "Dragon"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "'enum'")

		w = s.do(http.MethodPost, "/api/v1/entities", map[string]any{"name": "Odin", "type": "aesir"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodPost, "/api/v1/entities", map[string]any{"name": "Odin"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	source := map[string]any{
		"creator_id":       uuid.NewString(),
		"publication_date": "2020-01-02T00:00:00Z",
		"publisher":        "Penguin",
		"url":              "https://example.com/eddas",
		"branch":           "Norse",
		"content_type":     "HistoricalLore",
		"flags":            "Folkist",
		"format":           "Ebook",
	}

	t.Run("required fields and lengths", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/sources", map[string]any{"publisher": strings.Repeat("p", 300)})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Publisher")
		require.Contains(t, w.Body.String(), "CreatorID")

		long := maps.Clone(source)
		long["url"] = "https://example.com/" + strings.Repeat("u", 250)
		w = s.do(http.MethodPost, "/api/v1/sources", long)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "'max'")

		w = s.do(http.MethodPost, "/api/v1/users", map[string]any{"username": "odin", "email": "not-an-email"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("valid source then invalid writes", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/sources", source)
		require.Equal(t, http.StatusCreated, w.Code)
		var created model.Source
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		path := "/api/v1/sources/" + created.SourceID.String()

		w = s.do(http.MethodPatch, path, `{"branch":"Atlantis"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		w = s.do(http.MethodPatch, path, `{"publisher":"`+strings.Repeat("p", 101)+`"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		bad := created
		bad.Publisher = ""
		w = s.do(http.MethodPut, path, bad)
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got model.Source
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, model.BranchNorse, got.Branch)
		require.Equal(t, "Penguin", got.Publisher)
		require.Equal(t, 1, got.Version)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		user := map[string]any{"username": "odin", "email": "odin@asgard.example", "active": true}
		w := s.do(http.MethodPost, "/api/v1/users", user)
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(http.MethodPost, "/api/v1/users", user)
		require.Equal(t, http.StatusConflict, w.Code)
	})
}
