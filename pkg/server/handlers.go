package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dashsync/dashsync/pkg/pass"
	"github.com/labstack/echo/v4"
)

// Runner runs passes and remembers the last report.
//
// *pass.Runner implements this.
type Runner interface {
	Run(context.Context) (pass.Report, error)
	Last() (pass.Report, bool)
}

// FailedPass is the response for a pass which has failed.
type FailedPass struct {
	Message ErrorMessage `json:"message"`
	Report  pass.Report  `json:"report"`
}

func HealthzHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
}

// SyncHandler runs a pass now.
//
// # It responds
//
// - 200 with the report, when the pass is done,
//
// - 409 when another pass is running, or
//
// - 500 with the report and the reason, when the pass is failed.
//
// The pass is bounded by timeout, if it is positive.
func SyncHandler(runner Runner, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		// the pass goes on even if the client has gone away.
		ctx := context.WithoutCancel(c.Request().Context())
		if 0 < timeout {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		report, err := runner.Run(ctx)
		if errors.Is(err, pass.ErrBusy) {
			return Conflict("another pass is running", WithAdvice("retry later."), WithError(err))
		}
		if err != nil {
			c.Logger().Errorf("pass is failed: %s", err)
			return c.JSON(http.StatusInternalServerError, FailedPass{
				Message: ErrorMessage{Reason: reasonOf(err), Cause: err},
				Report:  report,
			})
		}
		return c.JSON(http.StatusOK, report)
	}
}

// ReportHandler responds the report of the last pass, or 404 before the first pass.
func ReportHandler(runner Runner) echo.HandlerFunc {
	return func(c echo.Context) error {
		report, ok := runner.Last()
		if !ok {
			return NotFound("no passes have been run yet")
		}
		return c.JSON(http.StatusOK, report)
	}
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, pass.ErrLoad):
		return "document can not be loaded"
	case errors.Is(err, pass.ErrHook):
		return "before-hook has refused the pass"
	case errors.Is(err, pass.ErrSave):
		return "document can not be saved"
	}
	return "pass is failed"
}
