// internal/handler/http/thing_handler.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lionls/snoowrap/internal/actions"
	"github.com/lionls/snoowrap/internal/content"
	"github.com/lionls/snoowrap/internal/expand"
	"github.com/lionls/snoowrap/internal/models"
	"github.com/lionls/snoowrap/internal/service"
)

type ThingHandler struct {
	svc     service.ThingService
	timeout time.Duration
}

func NewThingHandler(svc service.ThingService, timeout time.Duration) *ThingHandler {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &ThingHandler{svc: svc, timeout: timeout}
}

// GetThing godoc
// @Summary Get a submission or comment with its loaded replies
// @Description Loads the thing and the reply forest Reddit returns on its comment page
// @Tags thing
// @Produce json
// @Param name query string true "Fullname, e.g. t3_abc123 or t1_def456"
// @Success 200 {object} models.Thing
// @Failure 400 {object} models.HTTPError
// @Failure 404 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Router /thing [get]
func (h *ThingHandler) GetThing(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `name` parameter")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	thing, err := h.svc.GetThing(ctx, name)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(http.StatusOK, thing)
}

// ExpandReplies godoc
// @Summary Expand the reply tree of a submission or comment
// @Description Returns an expanded copy of the thing, loading up to `limit` children per node and recursing `depth` levels
// @Tags thing
// @Produce json
// @Param name query string true "Fullname, e.g. t3_abc123 or t1_def456"
// @Param limit query int false "Children expanded per node; unbounded when omitted"
// @Param depth query int false "Levels to expand; unbounded when omitted"
// @Success 200 {object} models.ExpandResponse
// @Failure 400 {object} models.HTTPError
// @Failure 404 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Router /expand [get]
func (h *ThingHandler) ExpandReplies(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `name` parameter")
	}

	limit, err := expand.ParseBound(c.QueryParam("limit"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid `limit`")
	}
	depth, err := expand.ParseBound(c.QueryParam("depth"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid `depth`")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp, err := h.svc.Expand(ctx, name, expand.Options{Limit: limit, Depth: depth})
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Act godoc
// @Summary Apply a one-shot action to a submission or comment
// @Description Votes, saves, distinguishes, edits, gilds, deletes or toggles inbox replies
// @Tags thing
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name path string true "Fullname of the thing"
// @Param action path string true "upvote, downvote, unvote, save, unsave, distinguish, undistinguish, edit, gild, delete, enable_inbox_replies or disable_inbox_replies"
// @Param text formData string false "New text for edit"
// @Param how formData string false "yes, no, admin or special for distinguish"
// @Param sticky formData bool false "Sticky flag for distinguish"
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.HTTPError
// @Failure 404 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Router /thing/{name}/{action} [post]
func (h *ThingHandler) Act(c echo.Context) error {
	name := c.Param("name")
	action := c.Param("action")

	params := service.ActionParams{
		Text: c.FormValue("text"),
		How:  actions.DistinguishHow(c.FormValue("how")),
	}
	if s := c.FormValue("sticky"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid `sticky`")
		}
		params.Sticky = v
	}
	if action == "edit" && params.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `text` parameter")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	thing, err := h.svc.Apply(ctx, name, action, params)
	if err != nil {
		if errors.Is(err, service.ErrUnknownAction) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return upstreamError(err)
	}
	return c.JSON(http.StatusOK, models.ActionResponse{Action: action, Thing: thing})
}

func upstreamError(err error) error {
	if errors.Is(err, content.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("upstream error: %v", err))
}
