// Command telemetryd serves ibtstream's HTTP control surface: it loads
// the server config, wires the live source manager (demo, iRacing, ACC),
// and exposes upload/replay control/streaming/adapter/sink endpoints over
// echo, per spec.md §6. Grounded on PsybeDev-tracktic/main.go's top-level
// wiring shape (construct components, start background work, run the
// transport, shut down on signal) translated from wails' desktop runtime
// into a plain HTTP server, since spec.md describes a standalone service
// rather than a desktop app.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/racetelem/ibtstream/internal/apierr"
	"github.com/racetelem/ibtstream/internal/bus"
	"github.com/racetelem/ibtstream/internal/config"
	"github.com/racetelem/ibtstream/internal/control"
	"github.com/racetelem/ibtstream/internal/logx"
	"github.com/racetelem/ibtstream/internal/source"
	"github.com/racetelem/ibtstream/internal/source/acc"
	"github.com/racetelem/ibtstream/internal/source/demo"
	"github.com/racetelem/ibtstream/internal/source/iracing"
)

func main() {
	configPath := flag.String("config", "ibtstream.yaml", "path to the server config file")
	flag.Parse()

	log := logx.New("telemetryd", logx.LevelInfo)
	cfg := config.Load(*configPath)

	b := bus.New()
	surf := &surfaceHolder{}

	mgr := source.New(b, log.With("sources"), surf.ReplayActive, cfg.Sources.Disabled...)
	mgr.Register(demo.New())
	mgr.Register(iracing.New())
	accCfg := acc.DefaultConfig()
	if cfg.Sources.ACCAddress != "" {
		accCfg.Address = cfg.Sources.ACCAddress
	}
	if cfg.Sources.ACCDisplayName != "" {
		accCfg.DisplayName = cfg.Sources.ACCDisplayName
	}
	accCfg.ConnectionPassword = cfg.Sources.ACCConnectionPassword
	accCfg.CommandPassword = cfg.Sources.ACCCommandPassword
	accLog := zerolog.New(os.Stderr).With().Timestamp().Str("component", "sources.acc").Logger()
	mgr.Register(acc.New(accCfg, accLog))

	c := control.New(b, mgr, log.With("control"), cfg.Upload.Dir, cfg.Upload.MaxSizeMiB*1024*1024)
	surf.set(c)

	mgr.Start()
	defer mgr.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	registerRoutes(e, c, log.With("http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(cfg.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server error: %v", err)
		}
	}()
	log.Infof("listening on %s", cfg.Server.ListenAddr)

	<-ctx.Done()
	log.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}

// surfaceHolder breaks the construction cycle between the source manager
// (which needs a ReplayActiveFunc at New time) and the control surface
// (which needs the manager at New time).
type surfaceHolder struct {
	s *control.Surface
}

func (h *surfaceHolder) set(s *control.Surface) { h.s = s }
func (h *surfaceHolder) ReplayActive() bool {
	if h.s == nil {
		return false
	}
	return h.s.ReplayActive()
}

func statusFor(err error) int {
	var e *apierr.Error
	if !apierr.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case apierr.KindMalformedInput, apierr.KindOutOfRange:
		return http.StatusBadRequest
	case apierr.KindUnsupported:
		return http.StatusUnprocessableEntity
	case apierr.KindConflict:
		return http.StatusConflict
	case apierr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryFloat(c echo.Context, name string, def float64) float64 {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return n
}
