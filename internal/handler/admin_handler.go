package handler

import (
	"fmt"
	"net/http"

	"edupay-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type approveRequest struct {
	Approve *bool `json:"approve"`
}

type verifyRequest struct {
	Verify *bool `json:"verify"`
}

func (h *Handler) AdminStats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Statistiques récupérées avec succès.",
		"data":    stats,
	})
}

func (h *Handler) AdminListSchools(c echo.Context) error {
	schools, err := h.admin.ListSchools(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Liste des écoles récupérée avec succès.",
		"data":    schools,
	})
}

func (h *Handler) AdminApproveSchool(c echo.Context) error {
	var req approveRequest
	if err := c.Bind(&req); err != nil || req.Approve == nil {
		logger.FromContext(c).Warn("Invalid approve payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Le champ 'approve' est requis et doit être un booléen."})
	}

	school, err := h.schools.SetApproval(c.Request().Context(), c.Param("schoolId"), *req.Approve)
	if err != nil {
		return respondError(c, err)
	}

	verb := "désapprouvée"
	if school.IsApproved {
		verb = "approuvée"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("École %s %s avec succès.", school.Name, verb),
		"school":  school,
	})
}

func (h *Handler) AdminListParents(c echo.Context) error {
	parents, err := h.admin.ListParents(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Liste des parents récupérée avec succès.",
		"data":    parents,
	})
}

func (h *Handler) AdminVerifyParent(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil || req.Verify == nil {
		logger.FromContext(c).Warn("Invalid verify payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Le champ 'verify' est requis et doit être un booléen."})
	}

	parent, err := h.admin.SetParentVerified(c.Request().Context(), c.Param("parentId"), *req.Verify)
	if err != nil {
		return respondError(c, err)
	}

	verb := "non vérifié"
	if parent.Verified {
		verb = "vérifié"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Parent %s %s avec succès.", parent.Phone, verb),
		"parent":  parent,
	})
}

func (h *Handler) AdminListPayments(c echo.Context) error {
	payments, err := h.admin.ListPayments(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Historique des paiements récupéré avec succès.",
		"data":    payments,
	})
}
