package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"formstore/internal/logger"
	"formstore/internal/store"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Register mounts the API routes on e.
func Register(e *echo.Echo, s store.Store) {
	e.GET("/api/hello/:name", Hello(s))
	e.GET("/forms", ListForms(s))
	e.POST("/form", SaveForm(s))
	e.GET("/form/:uuid", GetForm(s))
	e.DELETE("/form/:uuid", DeleteForm(s))
	e.GET("/healthz", Health(s))
}

func storeError(c echo.Context, msg string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "form not found"})
	}
	logger.Error(msg, err, zap.String("path", c.Path()))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
}

// pathParam returns a single decoded path segment. Echo leaves params escaped
// when routing on RawPath, and a trailing param can match past a '/'.
func pathParam(c echo.Context, name string) (string, bool) {
	raw := c.Param(name)
	if strings.Contains(raw, "/") {
		return "", false
	}
	if c.Request().URL.RawPath == "" {
		return raw, true
	}
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", false
	}
	return value, true
}

// Hello godoc
// @Summary      Greet through the database
// @Description  Builds "Hello <name>" with a database round-trip
// @Tags         hello
// @Produce      json
// @Param        name  path  string  true  "Name to greet"
// @Success      200   {object}  HelloResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/hello/{name} [get]
func Hello(s store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		name, ok := pathParam(c, "name")
		if !ok {
			return echo.ErrNotFound
		}
		hello, err := s.Greet(c.Request().Context(), name)
		if err != nil {
			return storeError(c, "query failed", err)
		}
		return c.JSON(http.StatusOK, HelloResponse{Hello: hello})
	}
}

// ListForms godoc
// @Summary      List forms
// @Description  Returns every stored form, most recently updated first. Rows with unreadable data are left out.
// @Tags         forms
// @Produce      json
// @Success      200  {array}   store.Form
// @Failure      500  {object}  ErrorResponse
// @Router       /forms [get]
func ListForms(s store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		forms, err := s.List(c.Request().Context())
		if err != nil {
			return storeError(c, "failed to list forms", err)
		}
		return c.JSON(http.StatusOK, forms)
	}
}

// SaveForm godoc
// @Summary      Create or replace a form
// @Description  Stores data under uuid, generating a uuid when none is given
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        form  body  SaveFormRequest  true  "Form to save"
// @Success      200   {object}  SaveFormResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /form [post]
func SaveForm(s store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req SaveFormRequest
		if err := c.Bind(&req); err != nil || len(req.Data) == 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		}

		var id string
		if req.UUID != nil {
			id = *req.UUID
		}

		id, err := s.Save(c.Request().Context(), id, req.Data)
		if err != nil {
			return storeError(c, "failed to save form", err)
		}
		return c.JSON(http.StatusOK, SaveFormResponse{UUID: id})
	}
}

// GetForm godoc
// @Summary      Get a form
// @Tags         forms
// @Produce      json
// @Param        uuid  path  string  true  "Form ID"
// @Success      200   {object}  FormDataResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /form/{uuid} [get]
func GetForm(s store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathParam(c, "uuid")
		if !ok {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "form not found"})
		}
		data, err := s.Get(c.Request().Context(), id)
		if err != nil {
			return storeError(c, "failed to read form", err)
		}
		return c.JSON(http.StatusOK, FormDataResponse{Data: data})
	}
}

// DeleteForm godoc
// @Summary      Delete a form
// @Tags         forms
// @Produce      json
// @Param        uuid  path  string  true  "Form ID"
// @Success      200   {object}  DeleteFormResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /form/{uuid} [delete]
func DeleteForm(s store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathParam(c, "uuid")
		if !ok {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "form not found"})
		}
		if err := s.Delete(c.Request().Context(), id); err != nil {
			return storeError(c, "failed to delete form", err)
		}
		return c.JSON(http.StatusOK, DeleteFormResponse{Message: "Form deleted successfully"})
	}
}

// Health godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /healthz [get]
func Health(s store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := s.Ping(ctx); err != nil {
			logger.Error("database ping failed", err)
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		}
		return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
	}
}
