package routing

import (
	apphttp "realty_leads_backend/internal/http"
	"realty_leads_backend/platform/config"
)

// Module wires the lead routing endpoints into the HTTP server.
type Module struct {
	handler *Handler
	cfg     config.RoutingConfig
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates the routing HTTP module.
func NewModule(handler *Handler, cfg config.RoutingConfig) *Module {
	return &Module{handler: handler, cfg: cfg}
}

// Name implements the Module interface.
func (m *Module) Name() string { return "routing" }

// RegisterRoutes mounts the public intake endpoint and the admin routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	intake := ctx.V1.Group("/leads")
	intake.Use(ctx.IntakeRateLimiter.RateLimit(), APIKeyAuthMiddleware(m.cfg))
	intake.POST("/intake", m.handler.HandleIntake)

	admin := ctx.Admin.Group("/routing")
	admin.POST("/reload", m.handler.HandleReload)
	admin.GET("/routes", m.handler.HandleListRoutes)
	admin.POST("/routes", m.handler.HandleRegisterRoute)
	admin.GET("/routes/:name", m.handler.HandleGetRoute)
	admin.GET("/leads", m.handler.HandleListLeads)
	admin.GET("/leads/:id", m.handler.HandleGetLead)
}
