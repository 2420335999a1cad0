package handler

import (
	"errors"
	"net/http"

	"edupay-service/internal/service"
	"edupay-service/pkg/jwtutil"
	"edupay-service/pkg/logger"
	"edupay-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type requestOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	Name  string `json:"name"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	OTP   string `json:"otp" validate:"required,numeric,len=6"`
}

// recordLoginFailure counts failed logins by the domain error that stopped them
func recordLoginFailure(err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		prometheus.RecordAuthError("user_not_found")
	case errors.Is(err, service.ErrPendingApproval):
		prometheus.RecordAuthError("pending_approval")
	case errors.Is(err, service.ErrWrongPassword):
		prometheus.RecordAuthError("invalid_password")
	case errors.Is(err, service.ErrCodeExpired):
		prometheus.RecordAuthError("otp_expired")
	case errors.Is(err, service.ErrCodeMismatch):
		prometheus.RecordAuthError("otp_mismatch")
	case errors.Is(err, service.ErrNoPendingCode):
		prometheus.RecordAuthError("otp_missing")
	case errors.Is(err, service.ErrValidation):
		prometheus.RecordAuthError("invalid_request")
	}
}

func (h *Handler) RegisterSchool(c echo.Context) error {
	log := logger.FromContext(c)

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	school, err := h.schools.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			prometheus.RecordAuthError("email_already_exists")
		}
		return respondError(c, err)
	}

	prometheus.RegisterCounter.Inc()
	log.Info("School registered", zap.String("school_id", school.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "École enregistrée, en attente d'approbation.",
		"school":  school,
	})
}

func (h *Handler) LoginSchool(c echo.Context) error {
	log := logger.FromContext(c)

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	token, school, err := h.schools.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		recordLoginFailure(err)
		log.Warn("School login failed", zap.String("email", req.Email), zap.Error(err))
		return respondError(c, err)
	}

	prometheus.RecordLogin(jwtutil.RoleSchool)
	log.Info("School logged in", zap.String("school_id", school.ID))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "school": school})
}

func (h *Handler) RequestOTP(c echo.Context) error {
	var req requestOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	if err := h.otp.RequestCode(c.Request().Context(), req.Phone, req.Name); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Code envoyé"})
}

func (h *Handler) VerifyOTP(c echo.Context) error {
	log := logger.FromContext(c)

	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	token, parent, err := h.otp.VerifyCode(c.Request().Context(), req.Phone, req.OTP)
	if err != nil {
		recordLoginFailure(err)
		return respondError(c, err)
	}

	prometheus.RecordLogin(jwtutil.RoleParent)
	log.Info("Parent logged in", zap.String("parent_id", parent.ID))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "parent": parent})
}

func (h *Handler) LoginAdmin(c echo.Context) error {
	log := logger.FromContext(c)

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	token, admin, err := h.admin.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		recordLoginFailure(err)
		log.Warn("Admin login failed", zap.String("email", req.Email), zap.Error(err))
		return respondError(c, err)
	}

	prometheus.RecordLogin(jwtutil.RoleAdmin)
	log.Info("Admin logged in", zap.String("admin_id", admin.ID))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": admin})
}
