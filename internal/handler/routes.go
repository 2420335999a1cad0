package handler

import (
	"strconv"

	"edupay-service/internal/middleware"
	"edupay-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// multipartOverhead leaves room for boundaries and part headers around the receipt
const multipartOverhead = 64 * 1024

// Register mounts every route on e
func Register(e *echo.Echo, h *Handler, tokens middleware.TokenVerifier) {
	admin := middleware.RequireRoles(tokens, jwtutil.RoleAdmin)
	school := middleware.RequireRoles(tokens, jwtutil.RoleSchool)
	parent := middleware.RequireRoles(tokens, jwtutil.RoleParent)
	authenticated := middleware.RequireRoles(tokens)

	// Public routes
	e.GET("/", Welcome)
	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register-school", h.RegisterSchool)
	auth.POST("/login-school", h.LoginSchool)
	auth.POST("/request-otp", h.RequestOTP)
	auth.POST("/verify-otp", h.VerifyOTP)
	auth.POST("/login-admin", h.LoginAdmin)

	children := api.Group("/children", parent)
	children.POST("", h.CreateChild)
	children.GET("", h.ListChildren)

	parents := api.Group("/parents")
	parents.GET("", h.ListParents, admin)
	parents.GET("/children", h.ListChildren, parent)

	fees := api.Group("/fees")
	fees.POST("/create", h.CreateFee, school)
	fees.GET("/child/:id", h.ListChildFees, middleware.RequireRoles(tokens, jwtutil.RoleParent, jwtutil.RoleSchool))

	payments := api.Group("/payments")
	payments.POST("", h.CreatePayment, parent)
	payments.GET("/me", h.ListMyPayments, parent)
	payments.PUT("/:id/status", h.UpdatePaymentStatus, school)

	uploads := api.Group("/uploads")
	bodyLimit := echomiddleware.BodyLimit(strconv.FormatInt((h.uploadLimit+multipartOverhead+1023)/1024, 10) + "K")
	uploads.POST("/payment/:id/proof", h.UploadProof, parent, bodyLimit)

	schools := api.Group("/schools")
	schools.GET("/me", h.SchoolMe, school)
	schools.GET("/search", h.SearchSchools, authenticated)

	adminGroup := api.Group("/admin", admin)
	adminGroup.GET("/stats", h.AdminStats)
	adminGroup.GET("/schools", h.AdminListSchools)
	adminGroup.PUT("/schools/:schoolId/approve", h.AdminApproveSchool)
	adminGroup.GET("/parents", h.AdminListParents)
	adminGroup.PUT("/parents/:parentId/verify", h.AdminVerifyParent)
	adminGroup.GET("/payments", h.AdminListPayments)
}
