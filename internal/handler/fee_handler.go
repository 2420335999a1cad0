package handler

import (
	"net/http"

	"edupay-service/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type createFeeRequest struct {
	ChildID     string           `json:"childId" validate:"required"`
	FeeType     string           `json:"feeType" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Currency    string           `json:"currency"`
	DueDate     string           `json:"dueDate" validate:"required"`
	Description string           `json:"description"`
}

func (h *Handler) CreateFee(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req createFeeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	fee, err := h.fees.Create(c.Request().Context(), identity.SubjectID, service.FeeInput{
		ChildID:     req.ChildID,
		FeeType:     req.FeeType,
		Amount:      req.Amount,
		Currency:    req.Currency,
		DueDate:     req.DueDate,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, fee)
}

func (h *Handler) ListChildFees(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	fees, err := h.fees.ListForChild(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, fees)
}
