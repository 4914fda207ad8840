// Package http implements the inbound REST adapter on Echo. It translates
// HTTP requests into commands and queries, and domain errors into status
// codes; no business rules live here.
package http

import (
	"errors"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/actor"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createShipmentHandler       commands.CreateShipmentCommandHandler
	updateShipmentStatusHandler commands.UpdateShipmentStatusCommandHandler

	// Query handlers
	getShipmentByOrderHandler  queries.GetShipmentByOrderQueryHandler
	getShipperShipmentsHandler queries.GetShipperShipmentsQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createShipmentHandler commands.CreateShipmentCommandHandler,
	updateShipmentStatusHandler commands.UpdateShipmentStatusCommandHandler,
	getShipmentByOrderHandler queries.GetShipmentByOrderQueryHandler,
	getShipperShipmentsHandler queries.GetShipperShipmentsQueryHandler,
) *Server {
	return &Server{
		createShipmentHandler:       createShipmentHandler,
		updateShipmentStatusHandler: updateShipmentStatusHandler,
		getShipmentByOrderHandler:   getShipmentByOrderHandler,
		getShipperShipmentsHandler:  getShipperShipmentsHandler,
	}
}

// RegisterRoutes attaches all API routes to the Echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/shipments", s.CreateShipment)
	api.PATCH("/shipments/:orderId/status", s.UpdateShipmentStatus)
	api.GET("/shipments/:orderId", s.GetShipment)
	api.GET("/shippers/:shipperId/shipments", s.GetShipperShipments)
}

// Error is the JSON error envelope returned by every failing endpoint.
type Error struct {
	Code        int      `json:"code"`
	Message     string   `json:"message"`
	AllowedNext []string `json:"allowedNext,omitempty"`
}

// Health handles GET /health - liveness probe.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// NewShipment is the request body of POST /api/v1/shipments.
type NewShipment struct {
	OrderID           string     `json:"orderId"`
	ShipperID         string     `json:"shipperId"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

// CreateShipment handles POST /api/v1/shipments - starts tracking a freshly
// assigned order.
func (s *Server) CreateShipment(ctx echo.Context) error {
	var body NewShipment
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(body.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}
	shipperID, err := kernel.UUIDFromString(body.ShipperID)
	if err != nil {
		return badRequest(ctx, "Invalid shipper ID: "+err.Error())
	}

	cmd, err := commands.NewCreateShipmentCommand(orderID, shipperID, body.EstimatedDelivery)
	if err != nil {
		return badRequest(ctx, "Invalid shipment data: "+err.Error())
	}

	if handleErr := s.createShipmentHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		if errors.Is(handleErr, commands.ErrShipmentAlreadyExists) {
			return ctx.JSON(http.StatusConflict, Error{
				Code:    http.StatusConflict,
				Message: "Shipment tracking already exists for order",
			})
		}
		return internalError(ctx, "Failed to create shipment")
	}

	return ctx.NoContent(http.StatusCreated)
}

// StatusUpdate is the request body of PATCH /api/v1/shipments/:orderId/status.
// All fields are optional; a body without a status is a metadata-only update.
type StatusUpdate struct {
	Status               *string    `json:"status,omitempty"`
	CurrentLocation      *string    `json:"currentLocation,omitempty"`
	ProofOfDelivery      []string   `json:"proofOfDelivery,omitempty"`
	CustomerSignature    *string    `json:"customerSignature,omitempty"`
	DeliveryNote         *string    `json:"deliveryNote,omitempty"`
	EstimatedDelivery    *time.Time `json:"estimatedDelivery,omitempty"`
	DeliveryFailedReason *string    `json:"deliveryFailedReason,omitempty"`
	DeliveryFailedProofs []string   `json:"deliveryFailedProofs,omitempty"`
}

// ShipmentResponse is the representation of a shipment returned by the API.
type ShipmentResponse struct {
	OrderID           string                 `json:"orderId"`
	ShipperID         string                 `json:"shipperId"`
	Status            string                 `json:"status"`
	CurrentLocation   string                 `json:"currentLocation,omitempty"`
	History           []HistoryEntryResponse `json:"history"`
	ProofOfDelivery   []string               `json:"proofOfDelivery,omitempty"`
	CustomerSignature string                 `json:"customerSignature,omitempty"`
	DeliveryNote      string                 `json:"deliveryNote,omitempty"`
	EstimatedDelivery *time.Time             `json:"estimatedDelivery,omitempty"`
	FailureReason     string                 `json:"deliveryFailedReason,omitempty"`
	FailureProofs     []string               `json:"deliveryFailedProofs,omitempty"`
	Version           int                    `json:"version"`
}

// HistoryEntryResponse is one tracking history entry in API responses.
type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	Location  string    `json:"location,omitempty"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UpdateShipmentStatus handles PATCH /api/v1/shipments/:orderId/status - the
// single entry point for all shipment updates: status transitions, location
// pings, evidence uploads, and note changes.
func (s *Server) UpdateShipmentStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	act, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid actor: "+err.Error())
	}

	var body StatusUpdate
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	patch, err := patchFromBody(body)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewUpdateShipmentStatusCommand(orderID, act, patch)
	if err != nil {
		return badRequest(ctx, "Invalid update: "+err.Error())
	}

	updated, err := s.updateShipmentStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return updateErrorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, shipmentToResponse(updated))
}

// GetShipment handles GET /api/v1/shipments/:orderId - retrieves one
// shipment's tracking projection.
func (s *Server) GetShipment(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	query, err := queries.NewGetShipmentByOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	projection, err := s.getShipmentByOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return notFound(ctx, "Shipment not found")
		}
		return internalError(ctx, "Failed to retrieve shipment")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"orderId":           projection.OrderID.String(),
		"shipperId":         projection.ShipperID.String(),
		"status":            projection.Status,
		"currentLocation":   projection.CurrentLocation,
		"deliveryNote":      projection.DeliveryNote,
		"estimatedDelivery": projection.EstimatedDelivery,
		"historyLength":     projection.HistoryLength,
		"version":           projection.Version,
	})
}

// GetShipperShipments handles GET /api/v1/shippers/:shipperId/shipments -
// retrieves a shipper's worklist.
func (s *Server) GetShipperShipments(ctx echo.Context) error {
	shipperID, err := kernel.UUIDFromString(ctx.Param("shipperId"))
	if err != nil {
		return badRequest(ctx, "Invalid shipper ID: "+err.Error())
	}

	query, err := queries.NewGetShipperShipmentsQuery(shipperID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	worklist, err := s.getShipperShipmentsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve shipments")
	}

	response := make([]map[string]any, 0, len(worklist))
	for _, item := range worklist {
		response = append(response, map[string]any{
			"orderId":           item.OrderID.String(),
			"status":            item.Status,
			"currentLocation":   item.CurrentLocation,
			"estimatedDelivery": item.EstimatedDelivery,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// actorFromHeaders builds the acting principal from the gateway-injected
// identity headers.
func actorFromHeaders(ctx echo.Context) (actor.Actor, error) {
	id, err := kernel.UUIDFromString(ctx.Request().Header.Get("X-Actor-Id"))
	if err != nil {
		return actor.Actor{}, err
	}

	name := ctx.Request().Header.Get("X-Actor-Name")
	role := actor.RoleFromString(ctx.Request().Header.Get("X-Actor-Role"))

	return actor.NewActor(id, name, role)
}

// patchFromBody converts the wire-level update into a domain patch.
func patchFromBody(body StatusUpdate) (shipment.Patch, error) {
	patch := shipment.Patch{
		Location:          body.CurrentLocation,
		ProofImages:       body.ProofOfDelivery,
		Signature:         body.CustomerSignature,
		Note:              body.DeliveryNote,
		EstimatedDelivery: body.EstimatedDelivery,
		FailureReason:     body.DeliveryFailedReason,
		FailureProofs:     body.DeliveryFailedProofs,
	}

	if body.Status != nil {
		status, err := shipment.StatusFromString(*body.Status)
		if err != nil {
			return shipment.Patch{}, err
		}
		patch.Status = &status
	}

	return patch, nil
}

// shipmentToResponse maps the committed aggregate to its API representation.
func shipmentToResponse(s *shipment.Shipment) ShipmentResponse {
	history := make([]HistoryEntryResponse, 0, len(s.History()))
	for _, entry := range s.History() {
		history = append(history, HistoryEntryResponse{
			Status:    entry.Status.String(),
			Location:  entry.Location,
			Note:      entry.Note,
			Timestamp: entry.Timestamp,
		})
	}

	return ShipmentResponse{
		OrderID:           s.OrderID().String(),
		ShipperID:         s.ShipperID().String(),
		Status:            s.Status().String(),
		CurrentLocation:   s.CurrentLocation(),
		History:           history,
		ProofOfDelivery:   s.ProofOfDeliveryImages(),
		CustomerSignature: s.CustomerSignature(),
		DeliveryNote:      s.DeliveryNote(),
		EstimatedDelivery: s.EstimatedDelivery(),
		FailureReason:     s.FailureReason(),
		FailureProofs:     s.FailureProofs(),
		Version:           s.Version(),
	}
}

// updateErrorResponse maps domain errors from the update path to status codes.
// Invalid transitions carry the allowed next statuses so clients can present
// the legal moves.
func updateErrorResponse(ctx echo.Context, err error) error {
	var transitionErr *shipment.InvalidTransitionError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return notFound(ctx, "Shipment not found")
	case errors.Is(err, services.ErrActorIsForbidden),
		errors.Is(err, services.ErrShipperNotAssigned):
		return ctx.JSON(http.StatusForbidden, Error{
			Code:    http.StatusForbidden,
			Message: "Not allowed to update this shipment",
		})
	case errors.As(err, &transitionErr):
		allowed := make([]string, 0, len(transitionErr.Allowed))
		for _, next := range transitionErr.Allowed {
			allowed = append(allowed, next.String())
		}
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:        http.StatusBadRequest,
			Message:     err.Error(),
			AllowedNext: allowed,
		})
	case errors.Is(err, shipment.ErrProofOfDeliveryRequired),
		errors.Is(err, shipment.ErrFailureReasonRequired):
		return badRequest(ctx, err.Error())
	case errors.Is(err, errs.ErrConcurrencyConflict):
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Shipment was modified concurrently, retry the update",
		})
	default:
		return internalError(ctx, "Failed to update shipment")
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}

func notFound(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: message})
}

func internalError(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusInternalServerError, Error{Code: http.StatusInternalServerError, Message: message})
}
