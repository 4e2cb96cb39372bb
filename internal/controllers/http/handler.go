package http

import (
	"errors"
	"net/http"
	"strconv"

	"commerce-core/internal/domain"
	"commerce-core/internal/metrics"
	"commerce-core/internal/services"
	"commerce-core/internal/shipping"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service   *services.OrderService
	scheduler *services.Scheduler
	resolver  *shipping.Resolver
}

func NewHandler(s *services.OrderService, sched *services.Scheduler, resolver *shipping.Resolver) *Handler {
	return &Handler{service: s, scheduler: sched, resolver: resolver}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:number", h.GetOrder)
	r.POST("/orders/:number/cancel", h.CancelOrder)
	r.POST("/orders/:number/status", h.TransitionOrder)

	r.POST("/shipping/quote", h.QuoteShipping)

	r.POST("/webhooks/carrier", h.CarrierWebhook)

	r.PATCH("/admin/orders/:number", h.UpdateOrder)
	r.POST("/admin/orders/:number/carrier-retry", h.RetryCarrierOrder)
	r.POST("/admin/sweeps/expiry", h.RunExpirySweep)
	r.POST("/admin/sweeps/completion", h.RunCompletionSweep)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := strconv.ParseUint(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), userID, services.CheckoutInput{
		RecipientName:   req.RecipientName,
		RecipientPhone:  req.RecipientPhone,
		AddressLine:     req.AddressLine,
		City:            req.City,
		PostalCode:      req.PostalCode,
		CountryCode:     req.CountryCode,
		CourierCode:     req.CourierCode,
		ServiceCode:     req.ServiceCode,
		PaymentMethod:   req.PaymentMethod,
		PaymentProvider: req.PaymentProvider,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.service.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.service.Cancel(c.Request.Context(), order.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) TransitionOrder(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target := domain.OrderStatus(req.Target)
	switch target {
	case domain.StatusPending, domain.StatusPaid, domain.StatusProcessing,
		domain.StatusShipped, domain.StatusDelivered, domain.StatusCompleted,
		domain.StatusCancelled, domain.StatusFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + req.Target})
		return
	}

	order, err := h.service.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.service.Transition(c.Request.Context(), order.ID, target, services.TransitionOptions{
		TrackingNumber:  req.TrackingNumber,
		PaymentMethod:   req.PaymentMethod,
		PaymentProvider: req.PaymentProvider,
		PaymentRef:      req.PaymentRef,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) QuoteShipping(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.resolver.Quote(c.Request.Context(), shipping.Destination{
		CountryCode: req.CountryCode,
		PostalCode:  req.PostalCode,
	}, req.WeightGrams, req.Couriers)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := QuoteResponse{ShippingType: string(quote.Type)}
	if quote.Type == domain.ShippingDomestic {
		resp.Options = quote.Domestic
	} else {
		resp.Zone = quote.International.Zone.Name
		resp.Cost = quote.International.Cost
		resp.EtaDaysMin = quote.International.EtaDaysMin
		resp.EtaDaysMax = quote.International.EtaDaysMax
	}
	c.JSON(http.StatusOK, resp)
}

// CarrierWebhook always acknowledges with 200 regardless of internal outcome;
// the sender retries on anything else and internal discards are already
// logged for operator visibility.
func (h *Handler) CarrierWebhook(c *gin.Context) {
	var payload CarrierWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	h.service.HandleCarrierEvent(c.Request.Context(), services.CarrierEvent{
		ExternalOrderID: payload.OrderID,
		ExternalStatus:  payload.Status,
		TrackingNumber:  payload.Courier.TrackingID,
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var patch domain.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.service.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.service.UpdateOrderDetails(c.Request.Context(), order.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) RetryCarrierOrder(c *gin.Context) {
	order, err := h.service.RetryCarrierOrder(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) RunExpirySweep(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.RunExpirySweep(c.Request.Context()))
}

func (h *Handler) RunCompletionSweep(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.RunCompletionSweep(c.Request.Context()))
}

// respondError maps the error taxonomy onto HTTP statuses: not-found 404,
// conflicts 409, upstream trouble 502, validation everything-else 400.
func respondError(c *gin.Context, err error) {
	var (
		illegal *domain.IllegalTransitionError
		noStock *domain.InsufficientStockError
	)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &illegal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &noStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderNotEditable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrInvalidDestination),
		errors.Is(err, domain.ErrNoOptionsFound),
		errors.Is(err, domain.ErrUnsupportedDestination),
		errors.Is(err, domain.ErrTrackingNumberRequired),
		errors.Is(err, services.ErrCarrierOrderNotApplicable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
