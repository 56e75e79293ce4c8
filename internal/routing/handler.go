package routing

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/routing/repository"
	"realty_leads_backend/platform/config"
	"realty_leads_backend/platform/httpkit"
	"realty_leads_backend/platform/validator"
)

// Handler handles lead intake and admin HTTP requests.
type Handler struct {
	service *Service
	repo    *repository.Repository
	val     *validator.Validator
	cfg     config.RoutingConfig
}

// NewHandler creates a routing handler.
func NewHandler(service *Service, repo *repository.Repository, val *validator.Validator, cfg config.RoutingConfig) *Handler {
	return &Handler{service: service, repo: repo, val: val, cfg: cfg}
}

// HandleIntake processes an inbound form submission.
// POST /api/v1/leads/intake
// Accepts form-encoded, multipart, and JSON bodies.
func (h *Handler) HandleIntake(c *gin.Context) {
	fields, ok := h.collectFields(c)
	if !ok {
		return
	}

	meta := engine.Metadata{
		SourceURL: sourceURL(c, fields),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Timestamp: time.Now().UTC(),
		FormID:    fields["form_id"],
		RouteType: fields["route_type"],
	}

	result, err := h.service.Process(c.Request.Context(), fields, meta)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, result)
}

// HandleListRoutes lists the registered route names.
// GET /api/v1/admin/routing/routes
func (h *Handler) HandleListRoutes(c *gin.Context) {
	httpkit.OK(c, gin.H{"routes": h.service.Registry().Names()})
}

// HandleGetRoute returns one route configuration.
// GET /api/v1/admin/routing/routes/:name
func (h *Handler) HandleGetRoute(c *gin.Context) {
	route, err := h.service.Registry().Resolve(c.Param("name"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, route)
}

// RouteRequest is the payload for registering or replacing a route.
type RouteRequest struct {
	Name           string   `json:"name" validate:"required,min=1,max=64"`
	Actions        []string `json:"actions" validate:"required,min=1,dive,required"`
	Priority       int      `json:"priority" validate:"gte=0,lte=10"`
	SuccessMessage string   `json:"successMessage" validate:"max=500"`
	SkipDatabase   bool     `json:"skipDatabase"`
	EnableCalendly bool     `json:"enableCalendly"`
}

// HandleRegisterRoute registers a route definition at runtime.
// POST /api/v1/admin/routing/routes
func (h *Handler) HandleRegisterRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	route := &engine.RouteConfig{
		Name:           req.Name,
		Actions:        req.Actions,
		Priority:       req.Priority,
		SuccessMessage: req.SuccessMessage,
		SkipDatabase:   req.SkipDatabase,
		EnableCalendly: req.EnableCalendly,
	}
	if err := h.service.Registry().Register(route); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

// HandleReload reloads the route and mapping definitions from their
// configured files without a restart.
// POST /api/v1/admin/routing/reload
func (h *Handler) HandleReload(c *gin.Context) {
	var reloaded []string

	if path := h.cfg.GetRoutesFile(); path != "" {
		if err := h.service.Registry().LoadFile(path); err != nil {
			httpkit.Error(c, http.StatusInternalServerError, "failed to reload routes", err.Error())
			return
		}
		reloaded = append(reloaded, "routes")
	}
	if path := h.cfg.GetMappingFile(); path != "" {
		if err := h.service.ReloadMapping(path); err != nil {
			httpkit.Error(c, http.StatusInternalServerError, "failed to reload field mapping", err.Error())
			return
		}
		reloaded = append(reloaded, "mapping")
	}

	httpkit.OK(c, gin.H{"reloaded": reloaded})
}

// LeadSummary is the admin list representation of a stored lead.
type LeadSummary struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName,omitempty"`
	Email      string    `json:"email"`
	Route      string    `json:"route"`
	Score      int       `json:"score"`
	AssignedTo string    `json:"assignedTo,omitempty"`
	CRMID      string    `json:"crmId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HandleListLeads lists the newest stored leads.
// GET /api/v1/admin/routing/leads?limit=50
func (h *Handler) HandleListLeads(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	leads, err := h.repo.ListRecentLeads(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]LeadSummary, len(leads))
	for i, lead := range leads {
		result[i] = LeadSummary{
			ID:         lead.ID.String(),
			FirstName:  lead.FirstName,
			LastName:   lead.LastName,
			Email:      lead.Email,
			Route:      lead.Route,
			Score:      lead.Score,
			AssignedTo: lead.AssignedTo,
			CRMID:      lead.CRMID,
			CreatedAt:  lead.CreatedAt,
		}
	}
	httpkit.OK(c, result)
}

// HandleGetLead returns a single stored lead with full details.
// GET /api/v1/admin/routing/leads/:id
func (h *Handler) HandleGetLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	lead, err := h.repo.GetLead(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			httpkit.Error(c, http.StatusNotFound, "lead not found", nil)
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, LeadDetail{
		LeadSummary: LeadSummary{
			ID:         lead.ID.String(),
			FirstName:  lead.FirstName,
			LastName:   lead.LastName,
			Email:      lead.Email,
			Route:      lead.Route,
			Score:      lead.Score,
			AssignedTo: lead.AssignedTo,
			CRMID:      lead.CRMID,
			CreatedAt:  lead.CreatedAt,
		},
		Phone:     lead.Phone,
		Message:   lead.Message,
		ListingID: lead.ListingID,
		Address:   lead.Address,
		SourceURL: lead.SourceURL,
		IPAddress: lead.IPAddress,
		UserAgent: lead.UserAgent,
		FormID:    lead.FormID,
		UTM:       lead.UTM,
	})
}

// LeadDetail is the admin detail representation of a stored lead.
type LeadDetail struct {
	LeadSummary
	Phone     string            `json:"phone,omitempty"`
	Message   string            `json:"message,omitempty"`
	ListingID string            `json:"listingId,omitempty"`
	Address   string            `json:"address,omitempty"`
	SourceURL string            `json:"sourceUrl,omitempty"`
	IPAddress string            `json:"ipAddress,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	FormID    string            `json:"formId,omitempty"`
	UTM       map[string]string `json:"utm,omitempty"`
}

func (h *Handler) collectFields(c *gin.Context) (map[string]string, bool) {
	fields := make(map[string]string)

	if c.ContentType() == "application/json" {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
			return nil, false
		}
		for key, val := range body {
			switch v := val.(type) {
			case string:
				fields[key] = v
			case float64:
				fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				fields[key] = strconv.FormatBool(v)
			}
		}
	} else {
		if err := c.Request.ParseMultipartForm(1 << 20); err != nil {
			if err := c.Request.ParseForm(); err != nil {
				httpkit.Error(c, http.StatusBadRequest, "unable to parse form data", nil)
				return nil, false
			}
		}
		if c.Request.MultipartForm != nil {
			for key, values := range c.Request.MultipartForm.Value {
				if len(values) > 0 {
					fields[key] = values[0]
				}
			}
		}
		for key, values := range c.Request.PostForm {
			if _, exists := fields[key]; !exists && len(values) > 0 {
				fields[key] = values[0]
			}
		}
	}

	if len(fields) == 0 {
		httpkit.Error(c, http.StatusBadRequest, "no form data received", nil)
		return nil, false
	}
	return fields, true
}

func sourceURL(c *gin.Context, fields map[string]string) string {
	if v := fields["source_url"]; v != "" {
		return v
	}
	if v := c.GetHeader("Referer"); v != "" {
		return v
	}
	return c.GetHeader("Origin")
}
