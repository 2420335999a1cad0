package handler

import (
	"errors"
	"net/http"

	"edupay-service/internal/service"
	"edupay-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type createPaymentRequest struct {
	FeeID         string           `json:"feeId" validate:"required"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"paymentMethod"`
	TransactionID string           `json:"transactionId"`
}

type updatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) CreatePayment(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	payment, err := h.payments.Create(c.Request().Context(), identity.SubjectID, service.PaymentInput{
		FeeID:         req.FeeID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *Handler) ListMyPayments(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	payments, err := h.payments.ListForParent(c.Request().Context(), identity.SubjectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *Handler) UpdatePaymentStatus(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req updatePaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	status, err := service.ParsePaymentStatus(req.Status)
	if err != nil {
		return respondError(c, err)
	}

	payment, err := h.payments.UpdateStatus(c.Request().Context(), identity.SubjectID, c.Param("id"), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// UploadProof accepts a multipart "file" field as the payment receipt
func (h *Handler) UploadProof(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	log := logger.FromContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return respondError(c, service.ErrReceiptTooLarge)
		}
		log.Warn("Receipt upload without file", zap.Error(err))
		return respondError(c, service.ErrReceiptMissing)
	}
	if header.Size > h.uploadLimit {
		return respondError(c, service.ErrReceiptTooLarge)
	}

	file, err := header.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer file.Close()

	payment, err := h.payments.AttachReceipt(c.Request().Context(), identity.SubjectID, c.Param("id"), file)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Preuve de paiement uploadée avec succès.",
		"payment": payment,
	})
}
