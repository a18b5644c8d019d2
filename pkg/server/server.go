// HTTP control surface of dashsync.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashsync/dashsync/pkg/utils/echoutil"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var API_ROOT = "/api"

func api(subpath string) string {
	if !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	return fmt.Sprintf("%s/%s", API_ROOT, subpath)
}

// BuildServer mounts handlers:
//
//	GET  /healthz/
//	POST /api/sync/
//	GET  /api/report/
//	GET  /metrics/
//
// Passes triggered by POST /api/sync/ are bounded by passTimeout, if it is positive.
func BuildServer(runner Runner, loglevel string, passTimeout time.Duration) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	echoutil.SetLevel(e, loglevel)

	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())

	// logging for server-side latency.
	e.Use(echoutil.LogHandlerFunc)

	e.GET("/healthz/", HealthzHandler())
	e.POST(api("sync"), SyncHandler(runner, passTimeout))
	e.GET(api("report"), ReportHandler(runner))
	e.GET("/metrics/", echo.WrapHandler(promhttp.Handler()))

	return e
}
