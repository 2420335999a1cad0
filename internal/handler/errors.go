package handler

import (
	"errors"
	"net/http"

	"edupay-service/internal/service"
	"edupay-service/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const serverErrorMessage = "Erreur serveur"

// statusFor maps a domain error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body for err. Unexpected failures are logged and hidden from the client.
func respondError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(verrs)})
	}

	var domainErr *service.Error
	if errors.As(err, &domainErr) {
		if status := statusFor(err); status != http.StatusInternalServerError {
			return c.JSON(status, echo.Map{"error": domainErr.Message()})
		}
	}

	logger.FromContext(c).Error("Request failed",
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": serverErrorMessage})
}

// badRequest answers a body that could not be decoded
func badRequest(c echo.Context, err error) error {
	logger.FromContext(c).Warn("Failed to parse request", zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "Requête invalide"})
}

// HTTPErrorHandler replaces echo's default so routing errors and recovered panics share the JSON error shape
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := serverErrorMessage

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		status = he.Code
		switch status {
		case http.StatusNotFound:
			message = "Route introuvable"
		case http.StatusMethodNotAllowed:
			message = "Méthode non autorisée"
		case http.StatusRequestEntityTooLarge:
			message = "Fichier trop volumineux."
		case http.StatusUnauthorized:
			message = "Token manquant"
		default:
			message = http.StatusText(status)
		}
	} else {
		logger.FromContext(c).Error("Unhandled error", zap.Error(err))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, echo.Map{"error": message})
	}
	if writeErr != nil {
		logger.FromContext(c).Error("Failed to write error response", zap.Error(writeErr))
	}
}
