package cli

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/internal/server"
	"github.com/matzehuels/jsontree/pkg/observability"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API used by editors.

Sessions hold a document, its graph, the current search and theme. They are
kept in memory, on disk or in Redis depending on server.session_store, and
expire after server.session_ttl without use. Stateless endpoints build and
search graphs without a session.

The listen address comes from --addr, then $PORT, then server.addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the graph cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Register()
		defer observability.Reset()
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open %s session store: %w", c.Config.Server.SessionStore, err)
	}
	defer store.Close()

	cfg := c.Config.Server
	srv := server.New(server.Config{
		Addr:           cfg.Addr,
		AllowedOrigins: cfg.AllowedOrigins,
		SessionTTL:     cfg.SessionTTL.Duration,
		MaxInputSize:   cfg.MaxInputSize,
		MaxDepth:       c.Config.MaxDepth,
	}, runner, store, c.Logger)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	url := baseURL(ln.Addr())
	printSuccess("Serving on %s", StyleLink.Render(url))
	printDetail("sessions: %s · cache: %s", c.Config.Server.SessionStore, cacheBackend(c.Config.Cache.Backend, noCache))
	printNextStep("Try", "curl -s "+url+"/health")

	err = srv.Serve(ctx, ln)
	if ctx.Err() != nil {
		printInfo("Server stopped")
		return nil
	}
	return err
}

func baseURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return "http://" + host + ":" + port
}

func cacheBackend(backend string, disabled bool) string {
	if disabled {
		return "disabled"
	}
	return backend
}
