package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/postage-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/postage-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/postage-service/internal/app"
)

// PostageHandler handles postage quoting endpoints.
type PostageHandler struct {
	service *app.PostageService
}

// NewPostageHandler creates a new postage handler.
func NewPostageHandler(service *app.PostageService) *PostageHandler {
	return &PostageHandler{service: service}
}

// Quote handles POST /api/v1/postage/quote.
//
// @Summary Quote postage with one delivery module
// @Tags postage
// @Accept json
// @Produce json
// @Param request body dto.QuoteRequest true "Cart and destination"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/postage/quote [post]
func (h *PostageHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if !bind(c, &req) {
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), req.ToInput(req.Module, middleware.GetLocale(c)))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// QuoteAll handles POST /api/v1/postage/quotes. Every registered module is
// quoted; module failures are reported per module with a 200.
//
// @Summary Quote postage with every delivery module
// @Tags postage
// @Accept json
// @Produce json
// @Param request body dto.QuoteRequest true "Cart and destination"
// @Success 200 {object} dto.QuoteAllResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/postage/quotes [post]
func (h *PostageHandler) QuoteAll(c *gin.Context) {
	var req dto.QuoteRequest
	if !bind(c, &req) {
		return
	}

	results, err := h.service.QuoteAll(c.Request.Context(), req.ToInput("", middleware.GetLocale(c)))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteAllResponse(results))
}

// GetQuote handles GET /api/v1/postage/quotes/:id.
//
// @Summary Get an archived quote
// @Tags postage
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/postage/quotes/{id} [get]
func (h *PostageHandler) GetQuote(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		dto.HandleValidationErrors(c, map[string]string{"id": "must be a valid UUID"})
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// Modules handles GET /api/v1/delivery/modules.
//
// @Summary List delivery modules
// @Tags delivery
// @Produce json
// @Success 200 {object} dto.ModulesResponse
// @Router /api/v1/delivery/modules [get]
func (h *PostageHandler) Modules(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToModulesResponse(h.service.Modules()))
}

// RegisterPostageRoutes registers postage and delivery routes on rg.
func (h *PostageHandler) RegisterPostageRoutes(rg *gin.RouterGroup) {
	postage := rg.Group("/postage")
	postage.POST("/quote", h.Quote)
	postage.POST("/quotes", h.QuoteAll)
	postage.GET("/quotes/:id", h.GetQuote)

	rg.GET("/delivery/modules", h.Modules)
}

// bind decodes and validates the body, writing the error response itself
// when it returns false.
func bind(c *gin.Context, req *dto.QuoteRequest) bool {
	err := dto.BindAndValidate(c, req)

	switch {
	case err == nil:
		return true
	case dto.IsValidationError(err):
		dto.HandleValidationErrors(c, dto.ValidationErrors(err))
	case errors.Is(err, dto.ErrBinding):
		dto.HandleErrorCode(c, dto.ErrorCodeBadRequest, "request body is not valid JSON")
	default:
		dto.HandleError(c, err)
	}

	return false
}
