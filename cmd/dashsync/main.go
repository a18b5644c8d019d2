package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dashsync/dashsync/pkg/buildtime"
	"github.com/dashsync/dashsync/pkg/configs/daemon"
	"github.com/dashsync/dashsync/pkg/homer"
	"github.com/dashsync/dashsync/pkg/hook"
	"github.com/dashsync/dashsync/pkg/logger"
	"github.com/dashsync/dashsync/pkg/loop/recurring"
	"github.com/dashsync/dashsync/pkg/pass"
	"github.com/dashsync/dashsync/pkg/server"
	"github.com/dashsync/dashsync/pkg/utils/args"
	"github.com/dashsync/dashsync/pkg/utils/filewatch"
	"github.com/dashsync/dashsync/pkg/utils/try"
	"github.com/labstack/echo/v4"
)

func main() {
	l := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM,
	)
	// call cancel() when this function exits
	defer cancel()

	// define command line flags
	//-- path to config file
	pconfig := flag.String(
		"config", os.Getenv("DASHSYNC_CONFIG"), "path to config file",
	)
	//-- loop policy
	policy := args.Parser(recurring.ParsePolicy).Default(recurring.Every(0))
	flag.Var(
		policy, "policy",
		`loop policy (syntax: every[:INTERVAL]|once).`+
			` "every[:INTERVAL]" = run a pass every INTERVAL (default: interval in config) until stopped.`+
			` "once" = run a pass and exit with its result.`,
	)
	ploglevel := flag.String("loglevel", "info", "log level of HTTP server. debug|info|warn|error|off")
	pversion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *pversion {
		l.Println(buildtime.String())
		return
	}

	if *pconfig == "" {
		l.Fatal("-config (or env DASHSYNC_CONFIG) is required")
	}

	{
		// watch config. The supervisor restarts this process with the new one.
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			l.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(daemon.LoadDaemonConfig(*pconfig)).OrFatal(l)
	discovery := try.To(buildDiscovery(conf.Discovery(), l)).OrFatal(l)

	runner := pass.NewRunner(pass.Config{
		Discovery: discovery,
		Storage:   homer.NewFileStorage(conf.Document()),
		Hook:      hook.Build[pass.Report](conf.Hooks()),
		Logger:    logger.By(l, logger.Copied(), logger.WithPrefix("[pass] "), logger.WithTimestamp()),
	})

	var e *echo.Echo
	serverErr := make(chan error, 1)
	if listen := conf.Server().Listen(); listen != "" {
		e = server.BuildServer(runner, *ploglevel, conf.Interval())
		for _, r := range e.Routes() {
			e.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
		}
		go func() {
			if err := e.Start(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	lctx, lcancel := context.WithCancelCause(ctx)
	defer lcancel(nil)
	go func() {
		select {
		case err := <-serverErr:
			lcancel(err)
		case <-lctx.Done():
		}
	}()

	p := recurring.Defaulted(policy.Value(), conf.Interval())
	l.Printf(
		`dashsync %s: start sync loop /w policy "%s" for %s`,
		buildtime.String(), p, conf.Document(),
	)

	st, err := StartSyncLoop(
		lctx, l, runner,
		LoopManifest{Policy: p, Timeout: conf.Interval()},
	)
	l.Printf("sync loop stopped: %s", st)

	if e != nil {
		qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer qcancel()
		if err := e.Shutdown(qctx); err != nil {
			l.Printf("shutdown with error: %+v", err)
		}
	}

	if err == nil {
		return
	} else if errors.Is(err, context.Canceled) {
		cause := context.Cause(lctx)
		if errors.Is(cause, filewatch.ErrModified) {
			l.Fatal("restart: ", cause)
		}
		if ctx.Err() != nil && context.Cause(ctx) == context.Canceled {
			// stopped by signal
			l.Println("stopped")
			return
		}
		l.Fatal(err, " (loop context is cancelled by: ", cause, ")")
	}
	l.Fatal(err)
}
