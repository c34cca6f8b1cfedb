// Package httpapi exposes the entity repositories over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"

	"github.com/theplant/helix/model"
	"github.com/theplant/helix/store"
)

const APIPrefix = "/api/v1"

// EnumValue is one member of an enum as served to clients.
type EnumValue struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var bindingOnce sync.Once

// registerBindingRules teaches gin's validator the entity rules.
func registerBindingRules() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := model.RegisterValidations(v); err != nil {
				panic(err)
			}
		}
	})
}

func New(repos *store.Repositories, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}
	registerBindingRules()

	router := gin.New()
	router.Use(gin.Recovery(), AccessLog(log), Metrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group(APIPrefix)
	NewResource("users", repos.Users, log).Register(api)
	NewResource("creators", repos.Creators, log).Register(api)
	NewResource("sources", repos.Sources, log).Register(api)
	NewResource("entities", repos.Entities, log).Register(api)
	NewResource("indexes", repos.Indexes, log).Register(api)
	NewResource("entity-relationships", repos.EntityRelationships, log).Register(api)

	enums := model.Enums()
	api.GET("/enums", func(c *gin.Context) {
		names := lo.Keys(enums)
		sort.Strings(names)
		c.JSON(http.StatusOK, names)
	})
	api.GET("/enums/:name", func(c *gin.Context) {
		values, ok := enums[c.Param("name")]
		if !ok {
			abortWithError(c, log, NotFound("unknown enum "+c.Param("name")))
			return
		}
		c.JSON(http.StatusOK, lo.Map(values, func(name string, i int) EnumValue {
			return EnumValue{ID: i, Name: name}
		}))
	})

	return router
}
