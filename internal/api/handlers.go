package api

import (
	"bytes"
	"context"
	"coviddash/internal/chart"
	"coviddash/internal/engine"
	"coviddash/internal/models"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/zeebo/xxh3"
)

const (
	MIMEArrowStream = "application/vnd.apache.arrow.stream"

	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

// Store is the cached view of the upstream data the handlers read from.
type Store interface {
	Get(ctx context.Context) (*engine.Dataset, error)
	Invalidate()
	LoadedAt() (time.Time, bool)
}

type Handler struct {
	store     Store
	countries []string
}

func NewHandler(store Store, countries []string) *Handler {
	return &Handler{store: store, countries: countries}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetPage)
	e.GET("/healthz", h.GetHealth)

	api := e.Group("/api")
	api.GET("/cases", h.GetCases)
	api.GET("/cases.arrow", h.GetCasesArrow)
	api.GET("/deaths", h.GetDeaths)
	api.GET("/charts/cases", h.GetCasesChart)
	api.GET("/charts/deaths", h.GetDeathsChart)
	api.POST("/refresh", h.Refresh)
}

// --- HELPERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// countryParam returns the comma separated ?countries= list, or the configured allow-list.
func (h *Handler) countryParam(c echo.Context) []string {
	raw := c.QueryParam("countries")
	if raw == "" {
		return h.countries
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func latestParam(c echo.Context) (bool, error) {
	switch c.QueryParam("mode") {
	case "", "sum":
		return false, nil
	case "latest":
		return true, nil
	}
	return false, echo.NewHTTPError(http.StatusBadRequest, "mode must be sum or latest")
}

func (h *Handler) dashboard(c echo.Context) (*models.Dashboard, error) {
	latest, err := latestParam(c)
	if err != nil {
		return nil, err
	}
	ds, err := h.store.Get(c.Request().Context())
	if err != nil {
		log.Errorf("load failed: %v", err)
		return nil, echo.NewHTTPError(http.StatusBadGateway, "upstream data unavailable").SetInternal(err)
	}
	return ds.Dashboard(h.countryParam(c), latest), nil
}

// blob writes v as JSON with an xxh3 ETag, answering 304 when the client already has it.
func blob(c echo.Context, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
	c.Response().Header().Set(headerETag, etag)
	if c.Request().Header.Get(headerIfNoneMatch) == etag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSONBlob(http.StatusOK, body)
}

// buffered renders the whole body before committing a status, so a render
// failure still reaches echo's error handler.
func buffered(c echo.Context, contentType string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// --- HANDLERS ---
func (h *Handler) GetPage(c echo.Context) error {
	d, err := h.dashboard(c)
	if err != nil {
		return err
	}
	return buffered(c, echo.MIMETextHTMLCharsetUTF8, func(w io.Writer) error {
		return RenderPage(w, d)
	})
}

func (h *Handler) GetCases(c echo.Context) error {
	d, err := h.dashboard(c)
	if err != nil {
		return err
	}
	points := d.CasesOverTime
	total := len(points)
	limit, offset := getPaginationParams(c, total)

	page := models.Page[models.CasePoint]{Data: []models.CasePoint{}, Total: total, Limit: limit, Offset: offset}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page.Data = points[offset:end]
	}
	return blob(c, page)
}

func (h *Handler) GetCasesArrow(c echo.Context) error {
	d, err := h.dashboard(c)
	if err != nil {
		return err
	}
	return buffered(c, MIMEArrowStream, func(w io.Writer) error {
		return engine.WriteArrow(w, d.CasesOverTime)
	})
}

func (h *Handler) GetDeaths(c echo.Context) error {
	d, err := h.dashboard(c)
	if err != nil {
		return err
	}
	return blob(c, d.TotalDeaths)
}

func (h *Handler) GetCasesChart(c echo.Context) error {
	d, err := h.dashboard(c)
	if err != nil {
		return err
	}
	return blob(c, chart.Line(d.CasesOverTime))
}

func (h *Handler) GetDeathsChart(c echo.Context) error {
	d, err := h.dashboard(c)
	if err != nil {
		return err
	}
	return blob(c, chart.Bar(d.TotalDeaths))
}

// Refresh drops the cached data and loads it again.
func (h *Handler) Refresh(c echo.Context) error {
	h.store.Invalidate()
	ds, err := h.store.Get(c.Request().Context())
	if err != nil {
		log.Errorf("refresh failed: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, "upstream data unavailable").SetInternal(err)
	}
	log.Infof("Refreshed data, loaded at %v", ds.LoadedAt)
	return c.JSON(http.StatusOK, models.Health{Status: "ok", LoadedAt: &ds.LoadedAt})
}

func (h *Handler) GetHealth(c echo.Context) error {
	at, ok := h.store.LoadedAt()
	if !ok {
		return c.JSON(http.StatusOK, models.Health{Status: "loading"})
	}
	return c.JSON(http.StatusOK, models.Health{Status: "ok", LoadedAt: &at})
}
