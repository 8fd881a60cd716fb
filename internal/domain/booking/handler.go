package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/records", h.ListRecords)
	api.POST("/records", h.CreateRecord)
	api.GET("/records/:id", h.GetRecord)
	api.PATCH("/records/:id", h.UpdateRecord)
	api.DELETE("/records/:id", h.DeleteRecord)

	api.GET("/service_records", h.ListRecordServices)
	api.POST("/service_records", h.CreateRecordService)
	api.GET("/service_records/:id", h.GetRecordService)

	api.GET("/medpersona_service_records", h.ListStaffLinks)
	api.POST("/medpersona_service_records", h.CreateStaffLink)
	api.GET("/medpersona_service_records/:id", h.GetStaffLink)
}

// filterFromQuery parses the shared list filters. Timestamps take RFC 3339
// or a bare date.
func filterFromQuery(c echo.Context) (Filter, error) {
	var f Filter
	fields := apierr.Fields{}

	if v := c.QueryParam("date_start"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			fields["date_start"] = "invalid timestamp"
		} else {
			f.DateStart = &t
		}
	}
	if v := c.QueryParam("date_end"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			fields["date_end"] = "invalid timestamp"
		} else {
			f.DateEnd = &t
		}
	}
	if v := c.QueryParam("done"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fields["done"] = "invalid boolean"
		} else {
			f.Done = &b
		}
	}
	f.ServiceType = c.QueryParam("service_type")

	if len(fields) > 0 {
		return Filter{}, fields
	}
	return f, nil
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ListRecords(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRecords(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var in RecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.CreateRecord(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in RecordUpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.UpdateRecord(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRecordServices(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRecordServices(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateRecordService(c echo.Context) error {
	var in ServiceRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sr, err := h.svc.CreateRecordService(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sr)
}

func (h *Handler) GetRecordService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rs, err := h.svc.GetRecordService(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rs)
}

func (h *Handler) ListStaffLinks(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListStaffLinks(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateStaffLink(c echo.Context) error {
	var in StaffRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sr, err := h.svc.CreateStaffLink(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sr)
}

func (h *Handler) GetStaffLink(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	link, err := h.svc.GetStaffLink(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, link)
}
