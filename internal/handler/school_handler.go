package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) SchoolMe(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	school, err := h.schools.Me(c.Request().Context(), identity.SubjectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, school)
}

func (h *Handler) SearchSchools(c echo.Context) error {
	schools, err := h.schools.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, schools)
}
