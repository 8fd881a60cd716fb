package notes

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sanatorium/sanatorium/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/notes", h.ListNotes)
	api.POST("/notes", h.CreateNote)
	api.GET("/notes/:id", h.GetNote)
	api.PATCH("/notes/:id", h.UpdateNote)
	api.DELETE("/notes/:id", h.DeleteNote)

	api.GET("/notes/:id/tasks", h.ListTasks)
	api.POST("/notes/:id/tasks", h.CreateTask)
	api.GET("/notes/:id/tasks/:task_id", h.GetTask)
	api.PATCH("/notes/:id/tasks/:task_id", h.UpdateTask)
	api.DELETE("/notes/:id/tasks/:task_id", h.DeleteTask)
}

func paramID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateNote(c echo.Context) error {
	var in NoteInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) GetNote(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) ListNotes(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateNote(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in NoteUpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNote(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateTask(c echo.Context) error {
	noteID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in TaskInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.CreateTask(c.Request().Context(), noteID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListTasks(c echo.Context) error {
	noteID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListTasks(c.Request().Context(), noteID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetTask(c echo.Context) error {
	noteID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "task_id")
	if err != nil {
		return err
	}
	t, err := h.svc.GetTask(c.Request().Context(), noteID, taskID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	noteID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "task_id")
	if err != nil {
		return err
	}
	var in TaskUpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.UpdateTask(c.Request().Context(), noteID, taskID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	noteID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "task_id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTask(c.Request().Context(), noteID, taskID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
