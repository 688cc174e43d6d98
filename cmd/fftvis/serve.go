package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"fftvis/internal/fvz"
	"fftvis/internal/logging"
)

func serveCmd() *cli.Command {
	var (
		inPath string
		addr   string
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Decode a .fvz file once and serve its frames over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input .fvz file", Destination: &inPath, Required: true},
			&cli.StringFlag{Name: "addr", Usage: "listen address", Value: "127.0.0.1:8080", Destination: &addr},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logging.FromContext(ctx)

			bundle, err := readBundle(inPath)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			registerRoutes(e, bundle)

			log.Info("serving fvz bundle", "in", inPath, "address", addr, "frames", len(bundle.Frames))
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = 10 * time.Second
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

func registerRoutes(e *echo.Echo, bundle *fvz.Bundle) {
	e.GET("/header", func(c *echo.Context) error {
		return c.JSON(http.StatusOK, bundle.Header)
	})
	e.GET("/frame", func(c *echo.Context) error {
		msParam := c.QueryParam("ms")
		ms, err := strconv.ParseInt(msParam, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "ms query param must be an integer"})
		}
		return c.JSON(http.StatusOK, bundle.FrameAtMs(ms))
	})
}
