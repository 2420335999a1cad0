package handler

import (
	"net/http"

	"edupay-service/internal/middleware"
	"edupay-service/internal/service"
	"edupay-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
)

// Handler serves the HTTP API on top of the domain services
type Handler struct {
	otp         *service.OTPService
	schools     *service.SchoolService
	admin       *service.AdminService
	children    *service.ChildService
	fees        *service.FeeService
	payments    *service.PaymentService
	uploadLimit int64
}

type Services struct {
	OTP      *service.OTPService
	Schools  *service.SchoolService
	Admin    *service.AdminService
	Children *service.ChildService
	Fees     *service.FeeService
	Payments *service.PaymentService
}

func New(s Services) *Handler {
	return &Handler{
		otp:         s.OTP,
		schools:     s.Schools,
		admin:       s.Admin,
		children:    s.Children,
		fees:        s.Fees,
		payments:    s.Payments,
		uploadLimit: s.Payments.ReceiptLimit(),
	}
}

// caller returns the identity RequireRoles put on the context
func caller(c echo.Context) (jwtutil.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return jwtutil.Identity{}, echo.NewHTTPError(http.StatusUnauthorized)
	}
	return identity, nil
}
