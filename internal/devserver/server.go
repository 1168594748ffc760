package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/devconfig/internal/buildconfig"
	httpmiddleware "github.com/wolfeidau/devconfig/internal/http"
)

const shutdownTimeout = 5 * time.Second

// Pages renders the HTML page for an entry point.
type Pages interface {
	// EntryPoints returns the configured entry points with globs expanded.
	EntryPoints() ([]string, error)
	Handler(title, entryPointPath string) http.HandlerFunc
}

// Server serves build output and the index page on the resolved host and port.
type Server struct {
	config  *buildconfig.ResolvedConfig
	handler http.Handler
	log     zerolog.Logger
}

func New(rc *buildconfig.ResolvedConfig, pages Pages, logger zerolog.Logger) *Server {
	s := &Server{config: rc, log: logger}

	root, err := filepath.Abs(rc.Root)
	if err != nil {
		root = rc.Root
	}
	outDir := "/" + filepath.ToSlash(filepath.Clean(rc.Build.OutDir)) + "/"
	title := filepath.Base(root)

	mux := http.NewServeMux()

	// Serve build output
	mux.Handle(outDir, http.StripPrefix(outDir, http.FileServer(http.Dir(filepath.Join(root, rc.Build.OutDir)))))

	// Every other path renders the first entry point so client side routing works
	if entry := indexEntryPoint(rc, pages, logger); entry != "" {
		mux.HandleFunc("/", pages.Handler(title, entry))
	}

	var handler http.Handler = gzhttp.GzipHandler(mux)
	if len(rc.Server.CORS) > 0 {
		handler = withCORS(rc.Server.CORS, handler)
	}
	handler = httpmiddleware.AccessLog(logger)(handler)
	handler = httpmiddleware.ClientIPMiddleware()(handler)

	s.handler = handler
	return s
}

// indexEntryPoint picks the entry point rendered as the index page. Configured
// entry points may be globs, so the expanded list is preferred.
func indexEntryPoint(rc *buildconfig.ResolvedConfig, pages Pages, logger zerolog.Logger) string {
	entries, err := pages.EntryPoints()
	if err == nil && len(entries) > 0 {
		return entries[0]
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to expand entry points, using configured value")
	}
	if len(rc.Build.EntryPoints) > 0 {
		return rc.Build.EntryPoints[0]
	}
	return ""
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run binds the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Addr()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := configureHTTPServer(ln.Addr().String(), s.handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Strs("cors", s.config.Server.CORS).Msg("Dev server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown dev server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.log.Info().Msg("Dev server stopped")
	return nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// withCORS allows the configured origins to fetch dev server assets.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return middleware.Handler(h)
}
