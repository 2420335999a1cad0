package handler

import (
	"net/http"

	"edupay-service/internal/service"

	"github.com/labstack/echo/v4"
)

type createChildRequest struct {
	Name       string `json:"name" validate:"required"`
	ClassGrade string `json:"classGrade"`
	SchoolID   string `json:"schoolId" validate:"required"`
}

func (h *Handler) CreateChild(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req createChildRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	child, err := h.children.Create(c.Request().Context(), identity.SubjectID, service.ChildInput{
		Name:       req.Name,
		ClassGrade: req.ClassGrade,
		SchoolID:   req.SchoolID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, child)
}

// ListChildren serves both /api/children and /api/parents/children
func (h *Handler) ListChildren(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	children, err := h.children.ListForParent(c.Request().Context(), identity.SubjectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, children)
}

// ListParents is the admin directory of parent accounts
func (h *Handler) ListParents(c echo.Context) error {
	parents, err := h.admin.ListParents(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, parents)
}
