// internal/router/router.go
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lionls/snoowrap/internal/handler/http"
	"github.com/lionls/snoowrap/internal/service"
)

func NewRouter(e *echo.Echo, svc service.ThingService, timeout time.Duration) {
	th := http.NewThingHandler(svc, timeout)

	e.GET("/thing", th.GetThing)
	e.GET("/expand", th.ExpandReplies)
	e.POST("/thing/:name/:action", th.Act)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
