package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-solar/internal/api"
	"github.com/joeblew999/plat-solar/internal/api/viewer"
	"github.com/joeblew999/plat-solar/internal/db"
	"github.com/joeblew999/plat-solar/internal/humastar"
	"github.com/joeblew999/plat-solar/internal/metrics"
	"github.com/joeblew999/plat-solar/internal/service"
	"github.com/joeblew999/plat-solar/internal/store"
)

// imageryTileURL is the XYZ basemap the viewer draws under the overlay.
// High-resolution imagery is served remotely; this process never tiles.
const imageryTileURL = "https://server.arcgisonline.com/arcgis/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}"

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for static files and templates
	Dataset string // Results file name inside DataDir
	Logger  zerolog.Logger
}

// Server is the solar results HTTP server.
type Server struct {
	config   Config
	log      zerolog.Logger
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	renderer *humastar.Renderer
}

// New creates a new viewer server. All load failures degrade: a missing
// results file serves an empty viewer, a missing database disables the
// analytics endpoints, a missing web dir disables the page routes.
func New(cfg Config) *Server {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("plat-solar API", "0.1.0")
	humaConfig.Info.Description = "Solar-panel detection results: threshold filtering, map overlay data, and downloads."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, humastar.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	m := metrics.New()
	st := store.Load(filepath.Join(cfg.DataDir, cfg.Dataset), cfg.Logger)
	if st.Fallback() {
		m.IncLoadFailure()
	}
	m.SetFeaturesLoaded(st.Count())

	services := &api.Services{
		Store:   st,
		Style:   service.NewStyleService(cfg.DataDir),
		Dataset: service.NewDatasetService(cfg.DataDir, cfg.Dataset),
		Metrics: m,
	}

	var renderer *humastar.Renderer
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := humastar.NewRenderer(fragmentsDir); err == nil {
			renderer = r
		} else {
			cfg.Logger.Warn().Str("dir", fragmentsDir).Err(err).Msg("fragment templates unavailable, viewer SSE disabled")
		}
	}

	s := &Server{
		config:   cfg,
		log:      cfg.Logger,
		mux:      mux,
		humaAPI:  humaAPI,
		services: services,
		renderer: renderer,
	}

	conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "solar"})
	if err != nil {
		cfg.Logger.Warn().Err(err).Msg("analytics database unavailable")
	} else {
		s.db = conn
		s.mirrorFeatures()
	}

	s.routes()
	return s
}

// mirrorFeatures copies the attribute rows into DuckDB for ad-hoc SQL.
func (s *Server) mirrorFeatures() {
	rows := make([]db.FeatureRow, 0, s.services.Store.Count())
	for i, f := range s.services.Store.Features() {
		id := fmt.Sprintf("%d", i)
		if f.ID != nil {
			id = fmt.Sprintf("%v", f.ID)
		}
		rows = append(rows, db.FeatureRow{
			ID:   id,
			Area: f.Properties.MustFloat64(store.AreaProperty, 0),
		})
	}
	if err := db.LoadFeatures(s.db, rows); err != nil {
		s.log.Warn().Err(err).Msg("failed to mirror features into duckdb")
		return
	}
	s.log.Info().Int("rows", len(rows)).Msg("features mirrored into duckdb")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

// OpenAPI returns the OpenAPI spec for export.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

func (s *Server) routes() {
	api.NewAPIHandler(s.services).RegisterRoutes(s.humaAPI)
	api.NewInfoHandler(s.config.DataDir, s.config.Dataset, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	if s.renderer != nil {
		viewer.NewFilterHandler(s.services, s.renderer).RegisterRoutes(s.humaAPI)
		viewer.NewStyleHandler(s.services, s.renderer).RegisterRoutes(s.humaAPI)
		viewer.NewDatasetHandler(s.services, s.renderer).RegisterRoutes(s.humaAPI)
		viewer.NewEventHandler(s.services, s.renderer).RegisterRoutes(s.humaAPI)
	}

	// Hypermedia Link headers, generated after all routes exist.
	humastar.AutoLinks(s.humaAPI)

	s.mux.Handle("/metrics", s.services.Metrics.Handler())

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	s.mux.HandleFunc("/viewer", s.handleViewer)
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range humastar.RootLinks() {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-solar",
		"status":  "running",
	})
}

// viewerData feeds the viewer page template.
type viewerData struct {
	Signals    template.JS // initial Datastar signals
	BBox       template.JS // data bounds as [minX, minY, maxX, maxY], or null
	TileURL    string
	GeoJSONURL string // map source URL at the default threshold
	HasData    bool
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	pagePath := filepath.Join(s.config.WebDir, "templates", "viewer.html")
	tmpl, err := template.ParseFiles(pagePath)
	if err != nil {
		s.log.Error().Err(err).Msg("viewer page template failed to parse")
		http.Error(w, "viewer unavailable", http.StatusInternalServerError)
		return
	}

	signals, err := json.Marshal(viewer.InitialSignals(s.services))
	if err != nil {
		http.Error(w, "viewer unavailable", http.StatusInternalServerError)
		return
	}

	bbox := []byte("null")
	if b := s.services.Store.Bound(); b != nil {
		bbox, _ = json.Marshal([]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]})
	}

	data := viewerData{
		Signals:    template.JS(signals),
		BBox:       template.JS(bbox),
		TileURL:    imageryTileURL,
		GeoJSONURL: fmt.Sprintf("/api/v1/features.geojson?min_area=%g", store.DefaultMinArea),
		HasData:    s.services.Store.Count() > 0,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("viewer page render failed")
	}
}
