package handlers

import (
	"median/events"
	"median/middleware"
	"median/notify"
	"median/store"
	"median/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the router serves from.
type Deps struct {
	Store    *store.Store
	Notifier notify.Notifier
	Hub      *events.Hub
	Auth     *middleware.Authenticator
	Logger   *zap.Logger

	APIPrefix      string
	AllowedOrigins []string
}

// NewRouter builds the gin engine with every API route mounted.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.APIPrefix == "" {
		d.APIPrefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.Logger), middleware.CORS(d.AllowedOrigins))

	api := r.Group(d.APIPrefix)
	api.GET("/health", HealthCheck(d.Store))
	api.GET("/", Root)

	authed := api.Group("", middleware.AuthRequired(d.Auth))
	m := mutator{notifier: d.Notifier, logger: d.Logger}
	lookups := map[string]referenceLookup{}

	register(authed, views.Namespaces(d.Store), m, lookups)
	register(authed, views.Types(d.Store), m, lookups)
	register(authed, views.Validators(d.Store), m, lookups)
	register(authed, views.Fields(d.Store), m, lookups)
	register(authed, views.Objects(d.Store), m, lookups)
	register(authed, views.Endpoints(d.Store), m, lookups)
	register(authed, views.Tags(d.Store), m, lookups)

	authed.GET("/refcheck/:entity/:id", Refcheck(lookups))
	authed.POST("/generate", Generate(d.Store))
	if d.Notifier != nil {
		authed.GET("/notifications", Notifications(d.Notifier))
	}
	if d.Hub != nil {
		authed.GET("/events", gin.WrapH(d.Hub))
	}

	return r
}
