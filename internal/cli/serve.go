package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/statgrapher/pkg/buildinfo"
	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/pipeline"
	"github.com/matzehuels/statgrapher/pkg/words"
)

const defaultAddr = ":8080"

// serveCommand creates the serve command for the HTTP preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve freshly drawn charts over HTTP",
		Long: `Serve freshly drawn charts over HTTP.

  GET /chart.png?seed=&width=&height=   PNG with X-Caption and X-Render-ID headers
  GET /healthz                           liveness and build info

Requests without a seed get a new chart every time; seeded requests are
served from the render cache when possible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.ConfigPath)
			if err != nil {
				return err
			}
			merged := mergeRenderOptions(cmd, cfg.Render.options(), opts)
			if !cmd.Flags().Changed("addr") && cfg.Serve.Addr != "" {
				addr = cfg.Serve.Addr
			}
			return c.runServe(cmd.Context(), cfg, merged, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.WordsPath, "words", "w", "", "word file with *1*..*4* sections")
	cmd.Flags().StringVar(&opts.Font, "font", "", "caption font file or system font name")
	cmd.Flags().Float64SliceVar(&opts.FontSizes, "font-sizes", nil, "caption font ladder in points")
	cmd.Flags().BoolVar(&opts.RandomBends, "random-bends", false, "draw 0-2 bends instead of exactly 2")
	cmd.Flags().BoolVar(&opts.RerollCurveColor, "reroll-curve-color", false, "pick a new curve color for every shape")
	cmd.Flags().BoolVar(&opts.GridPerSide, "grid-per-side", false, "space gridlines independently on each side of the origin")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *Config, opts pipeline.Options, addr string, noCache bool) error {
	if opts.WordsPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "no word file: pass --words or set render.words in the config")
	}
	bank, err := words.Load(opts.WordsPath)
	if err != nil {
		return err
	}
	opts.Words = &bank

	runner, err := c.newRunner(ctx, cfg.Cache, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(runner, opts, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printSuccess("Serving charts on %s", StyleHighlight.Render("http://"+displayAddr(addr)+"/chart.png"))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// server answers chart requests with a shared runner. Per-request options
// start from base.
type server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
}

func newServer(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *server {
	return &server{runner: runner, base: base, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/chart.png", s.handleChart)
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Length", strconv.Itoa(len(res.PNG)))
	h.Set("X-Caption", res.Caption)
	h.Set("X-Render-ID", res.ID)
	h.Set("X-Seed", strconv.FormatUint(res.Seed, 10))
	if res.CacheHit {
		h.Set("X-Cache", "hit")
	} else {
		h.Set("X-Cache", "miss")
	}
	if opts.Seed != 0 {
		h.Set("Cache-Control", "public, max-age=86400")
	} else {
		h.Set("Cache-Control", "no-store")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PNG)
}

// requestOptions applies query parameters to the base options.
func (s *server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.base
	q := r.URL.Query()

	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "seed must be an unsigned integer, got %q", v)
		}
		opts.Seed = seed
	} else {
		opts.Seed = 0
	}
	for name, dst := range map[string]*int{"width": &opts.Width, "height": &opts.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
		}
		*dst = n
	}
	if err := errors.ValidateDimensions(orDefault(opts.Width, pipeline.DefaultWidth), orDefault(opts.Height, pipeline.DefaultHeight)); err != nil {
		return opts, err
	}
	return opts, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
