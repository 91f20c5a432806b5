package handler

import (
	"backoffice/dto/http"
	"backoffice/lib"
	"backoffice/pkg/apperr"
	"backoffice/pkg/response"
	"backoffice/service"
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.elastic.co/apm"
)

type Collector interface {
	Collect(ctx context.Context, in service.CollectInput) (*service.CollectResult, error)
	ListCustomerCards(ctx context.Context, customerID string) ([]lib.StoredCard, error)
	DeleteCustomerCard(ctx context.Context, customerID, cardToken string) error
}

type LinkCreator interface {
	CreateLink(ctx context.Context, companyID string, req lib.LinkRequest) (*lib.LinkResult, error)
}

// CollectHandler exposes stored-card collection over HTTP.
type CollectHandler struct {
	collector        Collector
	links            LinkCreator
	validate         *validator.Validate
	defaultCompanyID string
}

func NewCollectHandler(collector Collector, links LinkCreator, defaultCompanyID string) *CollectHandler {
	return &CollectHandler{
		collector:        collector,
		links:            links,
		validate:         validator.New(),
		defaultCompanyID: defaultCompanyID,
	}
}

// CollectPayment charges the customer's stored card.
func (h *CollectHandler) CollectPayment(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "CollectPayment", "handler")
	defer span.End()

	var req http.CollectPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body", "errors": err.Error()})
	}

	res, err := h.collector.Collect(spanCtx, service.CollectInput{
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentPlanID: req.PaymentPlanID,
	})
	if err != nil {
		return response.ResponseError(c, err)
	}

	return response.ResponseSuccess(c, fiber.StatusOK, http.CollectPaymentResponse{
		OrderID:       res.OrderID,
		Amount:        res.Amount,
		RoundedAmount: res.RoundedAmount,
		Message:       res.Message,
	})
}

func (h *CollectHandler) ListCards(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "ListCards", "handler")
	defer span.End()

	cards, err := h.collector.ListCustomerCards(spanCtx, c.Params("customerId"))
	if err != nil {
		return response.ResponseError(c, err)
	}

	out := make([]http.StoredCardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, http.StoredCardResponse{
			CardToken:   card.CardToken,
			Last4:       card.Last4,
			ExpiryMonth: card.ExpiryMonth,
			ExpiryYear:  card.ExpiryYear,
			Bank:        card.Bank,
			Brand:       card.Brand,
			RequireCVV:  bool(card.RequireCVV),
		})
	}

	return response.ResponseSuccess(c, fiber.StatusOK, out)
}

func (h *CollectHandler) DeleteCard(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "DeleteCard", "handler")
	defer span.End()

	if err := h.collector.DeleteCustomerCard(spanCtx, c.Params("customerId"), c.Params("ctoken")); err != nil {
		return response.ResponseError(c, err)
	}

	return response.ResponseSuccess(c, fiber.StatusOK, nil)
}

// CreateLink creates a PayTR payment or collection link.
func (h *CollectHandler) CreateLink(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "CreateLink", "handler")
	defer span.End()

	var req http.CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body", "errors": err.Error()})
	}
	if req.LinkType == "collection" && strings.TrimSpace(req.Email) == "" {
		return response.ResponseError(c, apperr.InvalidErr("email is required for collection links.", nil))
	}

	companyID := req.CompanyID
	if companyID == "" {
		companyID = h.defaultCompanyID
	}

	res, err := h.links.CreateLink(spanCtx, companyID, lib.LinkRequest{
		Name:           req.Name,
		Price:          req.Price,
		Currency:       req.Currency,
		MaxInstallment: req.MaxInstallment,
		LinkType:       req.LinkType,
		Lang:           req.Lang,
		Email:          req.Email,
		MinCount:       req.MinCount,
		ExpiryDate:     req.ExpiryDate,
	})
	if err != nil {
		return response.ResponseError(c, err)
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, http.CreateLinkResponse{ID: res.ID, Link: res.Link})
}
