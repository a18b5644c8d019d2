package echoutil_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dashsync/dashsync/pkg/utils/echoutil"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func TestParseLevel(t *testing.T) {
	for when, then := range map[string]struct {
		lvl log.Lvl
		ok  bool
	}{
		"debug":   {lvl: log.DEBUG, ok: true},
		"INFO":    {lvl: log.INFO, ok: true},
		"warn":    {lvl: log.WARN, ok: true},
		"":        {lvl: log.WARN, ok: true},
		"error":   {lvl: log.ERROR, ok: true},
		"off":     {lvl: log.OFF, ok: true},
		"verbose": {lvl: log.WARN, ok: false},
	} {
		t.Run("loglevel "+when, func(t *testing.T) {
			lvl, ok := echoutil.ParseLevel(when)
			if lvl != then.lvl || ok != then.ok {
				t.Errorf("unexpected: (actual, expected) = ((%d, %v), (%d, %v))", lvl, ok, then.lvl, then.ok)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	t.Run("warn sets WARN", func(t *testing.T) {
		e := echo.New()
		e.Logger.SetLevel(log.DEBUG)
		echoutil.SetLevel(e, "warn")
		if e.Logger.Level() != log.WARN {
			t.Errorf("unexpected level: %d", e.Logger.Level())
		}
	})

	t.Run("unknown loglevel is warned", func(t *testing.T) {
		e := echo.New()
		buf := new(bytes.Buffer)
		e.Logger.SetOutput(buf)
		echoutil.SetLevel(e, "verbose")
		if e.Logger.Level() != log.WARN {
			t.Errorf("unexpected level: %d", e.Logger.Level())
		}
		if !strings.Contains(buf.String(), "unknown loglevel: verbose") {
			t.Errorf("not warned: %s", buf.String())
		}
	})
}

func TestLogHandlerFunc(t *testing.T) {
	e := echo.New()
	buf := new(bytes.Buffer)
	e.Logger.SetOutput(buf)
	e.Logger.SetLevel(log.INFO)

	handler := echoutil.LogHandlerFunc(func(c echo.Context) error {
		return c.String(http.StatusTeapot, "short and stout")
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz/", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}

	log := buf.String()
	for _, expected := range []string{"< request", "GET /healthz/", "> response", "status = 418"} {
		if !strings.Contains(log, expected) {
			t.Errorf("log does not contain %q:\n%s", expected, log)
		}
	}
}
