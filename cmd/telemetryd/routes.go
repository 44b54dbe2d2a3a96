package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/racetelem/ibtstream/internal/bus"
	"github.com/racetelem/ibtstream/internal/control"
	"github.com/racetelem/ibtstream/internal/logx"
)

func registerRoutes(e *echo.Echo, c *control.Surface, log *logx.Logger) {
	e.POST("/replay", uploadHandler(c))
	e.GET("/replay", infoHandler(c))
	e.DELETE("/replay", deleteHandler(c))
	e.GET("/replay/frames", framesRangeHandler(c))
	e.POST("/replay/play", playHandler(c))
	e.POST("/replay/pause", pauseHandler(c))
	e.POST("/replay/seek", seekHandler(c))
	e.POST("/replay/speed", speedHandler(c))

	e.GET("/stream", streamHandler(c, log))

	e.GET("/adapters", adaptersHandler(c))
	e.POST("/adapters/:key", setAdapterEnabledHandler(c))

	e.GET("/sinks", sinksHandler(c))
	e.POST("/sinks", createSinkHandler(c))
	e.DELETE("/sinks/:id", deleteSinkHandler(c))
}

func uploadHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		fh, err := ctx.FormFile("file")
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "missing multipart field \"file\""})
		}
		f, err := fh.Open()
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		defer f.Close()

		info, err := c.Upload(fh.Filename, f)
		if err != nil {
			return errorResponse(ctx, err)
		}
		return ctx.JSON(http.StatusOK, info)
	}
}

func infoHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		info, err := c.Info()
		if err != nil {
			return errorResponse(ctx, err)
		}
		return ctx.JSON(http.StatusOK, info)
	}
}

func deleteHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := c.Delete(); err != nil {
			return errorResponse(ctx, err)
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}

func framesRangeHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := queryInt(ctx, "start", 0)
		count := queryInt(ctx, "count", 600)
		maskExpr := ctx.QueryParam("fields")

		entries, replayID, err := c.FramesRange(start, count, maskExpr)
		if err != nil {
			return errorResponse(ctx, err)
		}
		ctx.Response().Header().Set("X-Replay-Id", replayID)
		return ctx.JSON(http.StatusOK, entries)
	}
}

func playHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		info, err := c.Play()
		if err != nil {
			return errorResponse(ctx, err)
		}
		return ctx.JSON(http.StatusOK, info)
	}
}

func pauseHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		info, err := c.Pause()
		if err != nil {
			return errorResponse(ctx, err)
		}
		return ctx.JSON(http.StatusOK, info)
	}
}

func seekHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		frame := queryInt(ctx, "frame", 0)
		info, err := c.Seek(frame)
		if err != nil {
			return errorResponse(ctx, err)
		}
		return ctx.JSON(http.StatusOK, info)
	}
}

func speedHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		speed := queryFloat(ctx, "value", 1.0)
		info, err := c.SetSpeed(speed)
		if err != nil {
			return errorResponse(ctx, err)
		}
		return ctx.JSON(http.StatusOK, info)
	}
}

func adaptersHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, c.Adapters())
	}
}

func setAdapterEnabledHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		key := ctx.Param("key")
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := ctx.Bind(&body); err != nil {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		c.SetAdapterEnabled(key, body.Enabled)
		return ctx.JSON(http.StatusOK, c.Adapters())
	}
}

func sinksHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, c.Sinks())
	}
}

func createSinkHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var sc bus.SinkConfig
		if err := ctx.Bind(&sc); err != nil {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return ctx.JSON(http.StatusCreated, c.CreateSink(sc))
	}
}

func deleteSinkHandler(c *control.Surface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := c.DeleteSink(ctx.Param("id")); err != nil {
			return errorResponse(ctx, err)
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}

// streamHandler serves the merged frame/status/sinks stream as
// server-sent events: one long-lived connection per spec.md §6, three
// named event types, the current status and sinks snapshots pushed
// immediately on connect.
func streamHandler(c *control.Surface, log *logx.Logger) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		maskExpr := ctx.QueryParam("fields")
		sub := c.Subscribe(maskExpr)
		defer sub.Close()

		res := ctx.Response()
		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set("Cache-Control", "no-cache")
		res.Header().Set("Connection", "keep-alive")
		res.WriteHeader(http.StatusOK)

		w := bufio.NewWriter(res)
		notify := ctx.Request().Context().Done()

		for {
			select {
			case <-notify:
				return nil
			case ev, ok := <-sub.C():
				if !ok {
					return nil
				}
				if err := writeEvent(w, ev); err != nil {
					log.Warnf("stream write error: %v", err)
					return nil
				}
				res.Flush()
			}
		}
	}
}

func writeEvent(w *bufio.Writer, ev control.StreamEvent) error {
	var payload any
	switch ev.Kind {
	case control.EventFrame:
		payload = ev.Frame
	case control.EventStatus:
		payload = ev.Status
	case control.EventSinks:
		payload = ev.Sinks
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
		return err
	}
	return w.Flush()
}
