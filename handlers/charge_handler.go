package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/a2n2k3p4/topup-gateway/models"
	"github.com/a2n2k3p4/topup-gateway/observability"
	"github.com/a2n2k3p4/topup-gateway/reseller"
)

type Charger interface {
	Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error)
}

type ChargeHandler struct {
	Reseller Charger
}

func NewChargeHandler(charger Charger) *ChargeHandler {
	return &ChargeHandler{Reseller: charger}
}

func (h *ChargeHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// CreateCharge validates the body before anything leaves the process, then
// forwards it to the reseller. Errors are rendered by ErrorHandler.
func (h *ChargeHandler) CreateCharge(c *fiber.Ctx) error {
	req, err := models.ParseChargeRequest(c.Body())
	if err != nil {
		return err
	}

	result, err := h.Reseller.Charge(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// ErrorHandler turns the error taxonomy into HTTP statuses and an
// ErrorResponse body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)

	log := observability.LoggerFromContext(c.UserContext()).WithError(err).WithField("code", body.Code)
	if status >= fiber.StatusInternalServerError {
		log.Warn("Request failed")
	} else {
		log.Info("Request rejected")
	}

	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, models.ErrorResponse) {
	var (
		invalid     *models.ValidationError
		rejected    *reseller.RejectedError
		unavailable *reseller.UnavailableError
		fiberErr    *fiber.Error
	)

	switch {
	case errors.As(err, &invalid):
		return fiber.StatusUnprocessableEntity, models.ErrorResponse{
			Code:    "validation_error",
			Message: "charge request is invalid",
			Errors:  invalid.Fields,
		}
	case errors.As(err, &rejected):
		status := rejected.StatusCode
		if rejected.MissingURL || status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = fiber.StatusBadRequest
		}
		return status, models.ErrorResponse{Code: "reseller_rejected", Message: rejected.Error()}
	case errors.As(err, &unavailable):
		if unavailable.Timeout {
			return fiber.StatusGatewayTimeout, models.ErrorResponse{Code: "reseller_timeout", Message: unavailable.Error()}
		}
		return fiber.StatusBadGateway, models.ErrorResponse{Code: "reseller_unavailable", Message: unavailable.Error()}
	case errors.As(err, &fiberErr):
		return fiberErr.Code, models.ErrorResponse{Code: "http_error", Message: fiberErr.Message}
	}

	return fiber.StatusInternalServerError, models.ErrorResponse{Code: "internal_error", Message: "internal server error"}
}
