package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/travelers/internal/server"
	"github.com/desertthunder/travelers/internal/services"
	"github.com/desertthunder/travelers/internal/shared"
)

// Serve runs the web front end until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := *r.config
	if addr := cmd.String("addr"); addr != "" {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("%w: --addr %q", shared.ErrInvalidArgument, addr)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: --addr port %q", shared.ErrInvalidArgument, port)
		}
		config.Server.Host, config.Server.Port = host, p
	}

	httpClient := *r.httpClient
	if httpClient.Timeout == 0 {
		httpClient.Timeout = config.BackendTimeout()
	}
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	logger := shared.WithLogger(r.logger, "component", "server")
	api := services.NewAPIService(config.APIBase(), &httpClient)

	srv, err := server.New(&config, api, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.ListenAndServe(ctx)
}
