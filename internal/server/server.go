package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-style/internal/api"
	"github.com/joeblew999/plat-style/internal/api/editor"
	"github.com/joeblew999/plat-style/internal/db"
	"github.com/joeblew999/plat-style/internal/filesource"
	"github.com/joeblew999/plat-style/internal/service"
)

// Config holds the server configuration.
type Config struct {
	Host       string
	Port       string
	DataDir    string // DuckDB snapshots live under DataDir/duckdb
	AssetDir   string // Root for asset:// and file:// URLs
	StyleURL   string // Loaded by Init when no snapshot exists
	PixelRatio float32
	CacheMB    int // 0 disables the resource cache
	EnableDB   bool
	Logger     *slog.Logger
}

// Server is the style HTTP server.
type Server struct {
	config   Config
	logger   *slog.Logger
	mux      *http.ServeMux
	humaAPI  huma.API
	store    *db.Store
	cache    *filesource.Cache
	services *api.Services
}

// New creates a new style server. A database that fails to open is logged
// and the server runs without snapshots.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("plat-style API", "1.0.0")
	humaConfig.Info.Description = "Map style document API for managing sources, layers, images and sprites."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:  cfg,
		logger:  cfg.Logger,
		mux:     mux,
		humaAPI: humaAPI,
	}

	var fs filesource.FileSource = &filesource.Router{
		Local:  filesource.NewLocal(cfg.AssetDir),
		Remote: filesource.NewHTTP(nil),
	}
	if cfg.CacheMB > 0 {
		cache, err := filesource.NewCache(fs, filesource.CacheConfig{MaxBytes: int64(cfg.CacheMB) << 20})
		if err != nil {
			s.logger.Warn("resource cache disabled", "error", err)
		} else {
			s.cache = cache
			fs = cache
		}
	}

	svcCfg := service.Config{
		FileSource: fs,
		PixelRatio: cfg.PixelRatio,
		Logger:     cfg.Logger,
	}
	if cfg.EnableDB {
		store, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "style"})
		if err != nil {
			s.logger.Warn("snapshots disabled", "error", err)
		} else {
			s.store = store
			svcCfg.Store = store
		}
	}
	s.services = &api.Services{Style: service.NewStyleService(svcCfg)}

	s.routes()
	return s
}

// Init restores the newest snapshot, falling back to Config.StyleURL.
func (s *Server) Init(ctx context.Context) error {
	restored, err := s.services.Style.Restore(ctx)
	if err != nil {
		s.logger.Warn("failed to restore snapshot", "error", err)
	}
	if restored {
		s.logger.Info("restored style snapshot", "name", s.services.Style.Summary().Name)
		return nil
	}
	if s.config.StyleURL == "" {
		return nil
	}
	if err := s.services.Style.LoadURL(ctx, s.config.StyleURL); err != nil {
		return fmt.Errorf("failed to load %s: %w", s.config.StyleURL, err)
	}
	return nil
}

// Style returns the style service.
func (s *Server) Style() *service.StyleService {
	return s.services.Style
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.config.DataDir, s.store != nil, s.config.PixelRatio).RegisterRoutes(s.humaAPI)

	// Editor change stream using Huma + Datastar SDK
	editor.NewEventHandler(s.services.Style).RegisterRoutes(s.humaAPI)

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-style",
		"status":  "running",
	})
}
