package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/theplant/helix"
	"github.com/theplant/helix/projection"
	"github.com/theplant/helix/store"
)

// Resource serves CRUD and dynamic query endpoints for one entity type.
type Resource[E any] struct {
	name string
	repo store.Repository[E]
	log  *slog.Logger
}

func NewResource[E any](name string, repo store.Repository[E], log *slog.Logger) *Resource[E] {
	return &Resource[E]{name: name, repo: repo, log: log}
}

func (r *Resource[E]) Register(g *gin.RouterGroup) {
	rg := g.Group("/" + r.name)
	rg.POST("", r.create)
	rg.GET("", r.list)
	rg.POST("/query", r.queryJSON)
	rg.GET("/query", r.queryString)
	rg.GET("/:id", r.get)
	rg.PUT("/:id", r.put)
	rg.PATCH("/:id", r.patch)
	rg.DELETE("/:id", r.delete)
}

func (r *Resource[E]) fail(c *gin.Context, err error) {
	abortWithError(c, r.log, err)
}

func (r *Resource[E]) id(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		r.fail(c, BadRequest("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func (r *Resource[E]) create(c *gin.Context) {
	var entity E
	if err := c.ShouldBindJSON(&entity); err != nil {
		r.fail(c, bindError(err))
		return
	}
	if err := r.repo.Create(c.Request.Context(), &entity); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, &entity)
}

// bindError reports rule violations field by field and hides decoder details.
func bindError(err error) *AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return NewAppError(http.StatusBadRequest, verrs.Error(), err)
	}
	return NewAppError(http.StatusBadRequest, "invalid request body", err)
}

func (r *Resource[E]) list(c *gin.Context) {
	entities, err := r.repo.List(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entities)
}

func (r *Resource[E]) get(c *gin.Context) {
	id, ok := r.id(c)
	if !ok {
		return
	}
	entity, err := r.repo.Get(c.Request.Context(), id)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (r *Resource[E]) put(c *gin.Context) {
	id, ok := r.id(c)
	if !ok {
		return
	}
	var entity E
	if err := c.ShouldBindJSON(&entity); err != nil {
		r.fail(c, bindError(err))
		return
	}
	if err := r.repo.Update(c.Request.Context(), id, &entity); err != nil {
		r.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Resource[E]) patch(c *gin.Context) {
	id, ok := r.id(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		r.fail(c, BadRequest("invalid request body"))
		return
	}
	if _, err := r.repo.Patch(c.Request.Context(), id, body); err != nil {
		r.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Resource[E]) delete(c *gin.Context) {
	id, ok := r.id(c)
	if !ok {
		return
	}
	if err := r.repo.Delete(c.Request.Context(), id); err != nil {
		r.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Resource[E]) queryJSON(c *gin.Context) {
	req := helix.NewQueryRequest()
	if err := c.ShouldBindJSON(req); err != nil {
		r.fail(c, BadRequest("invalid query request"))
		return
	}
	r.query(c, req)
}

type queryParams struct {
	Filters   []string `form:"filter"`
	SortBy    string   `form:"sortBy"`
	SortOrder string   `form:"sortOrder"`
	Size      int      `form:"size"`
	Offset    int      `form:"offset"`
	Fields    string   `form:"fields"`
}

// ParseFilter parses the property:operation:value form used in query strings.
// The value may itself contain colons.
func ParseFilter(s string) (helix.FilterClause, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return helix.FilterClause{}, errors.Errorf("filter %q is not property:operation:value", s)
	}
	return helix.FilterClause{Property: parts[0], Operation: parts[1], Value: parts[2]}, nil
}

func (r *Resource[E]) queryString(c *gin.Context) {
	var params queryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		r.fail(c, BadRequest("invalid query parameters"))
		return
	}
	req := helix.NewQueryRequest()
	req.SortBy = params.SortBy
	if params.SortOrder != "" {
		req.SortOrder = helix.SortOrder(params.SortOrder)
	}
	if params.Size != 0 {
		req.Size = params.Size
	}
	req.Offset = params.Offset
	req.Fields = params.Fields
	for _, f := range params.Filters {
		fc, err := ParseFilter(f)
		if err != nil {
			r.fail(c, BadRequest(err.Error()))
			return
		}
		req.Filters = append(req.Filters, fc)
	}
	r.query(c, req)
}

func (r *Resource[E]) query(c *gin.Context, req *helix.QueryRequest) {
	entities, err := r.repo.Query(c.Request.Context(), req)
	if err != nil {
		outcome := "error"
		if toAppError(err).Code == http.StatusBadRequest {
			outcome = "rejected"
		}
		QueriesTotal.WithLabelValues(r.name, outcome).Inc()
		r.fail(c, err)
		return
	}
	if len(entities) == 0 {
		QueriesTotal.WithLabelValues(r.name, "empty").Inc()
		r.fail(c, NotFound("no "+r.name+" match the query"))
		return
	}
	QueriesTotal.WithLabelValues(r.name, "ok").Inc()

	if strings.TrimSpace(req.Fields) == "" {
		c.JSON(http.StatusOK, entities)
		return
	}
	records, err := projection.Project(entities, req.Fields)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
