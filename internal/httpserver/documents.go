package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/docflow/internal/logging"
	"github.com/Skotchmaster/docflow/internal/repo"
	"github.com/Skotchmaster/docflow/internal/service"
	"github.com/Skotchmaster/docflow/internal/util"
)

type DocumentsHTTP struct {
	Svc *service.DocumentService
}

func (h *DocumentsHTTP) Ingest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "documents_ingest")

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn("ingest_error", "status", 400, "reason", "file is required")
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	meta := service.IngestMeta{
		Name:   c.FormValue("name"),
		Type:   c.FormValue("type"),
		Status: c.FormValue("status"),
	}
	doc, err := h.Svc.Ingest(ctx, fh, meta)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusCreated, doc)
}

func (h *DocumentsHTTP) List(c echo.Context) error {
	docs, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, docs)
}

func (h *DocumentsHTTP) Get(c echo.Context) error {
	id, err := documentIDParam(c)
	if err != nil {
		return err
	}

	doc, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentsHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "documents_update")

	id, err := documentIDParam(c)
	if err != nil {
		return err
	}

	var req struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	doc, err := h.Svc.Update(ctx, id, service.DocumentUpdate{Name: req.Name, Status: req.Status})
	if err != nil {
		if errors.Is(err, repo.ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentsHTTP) Delete(c echo.Context) error {
	id, err := documentIDParam(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *DocumentsHTTP) Download(c echo.Context) error {
	id, err := documentIDParam(c)
	if err != nil {
		return err
	}

	doc, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.Attachment(doc.FilePath, doc.Name)
}

func (h *DocumentsHTTP) Status(c echo.Context) error {
	id, err := documentIDParam(c)
	if err != nil {
		return err
	}

	doc, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":        doc.ID,
		"status":    doc.Status,
		"file_path": doc.FilePath,
	})
}

func (h *DocumentsHTTP) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, docs, err := h.Svc.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "documents": docs})
}

func documentIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
