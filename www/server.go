package www

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/powerhour/spotprices-go/config"
	"github.com/powerhour/spotprices-go/database"
	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/prices"
	"github.com/powerhour/spotprices-go/window"
)

type Server struct {
	logger *slog.Logger
	config config.AppConfigApi
	svc    *prices.Service
	db     *database.Database
	hub    *Hub
	tm     *TemplateManager
	mux    *http.ServeMux
}

//go:embed static
var embeddedStaticDir embed.FS

//go:embed docs/openapi.yaml
var openapiSpec []byte

func StartServer(svc *prices.Service, db *database.Database, config config.AppConfigApi) *Server {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, config.WwwDir)
	if err != nil {
		logger.Error("template manager initialization error", slog.Any("error", err))
	}

	s := &Server{
		logger: logger,
		config: config,
		svc:    svc,
		db:     db,
		hub:    NewHub(logger),
		tm:     tm,
		mux:    http.NewServeMux(),
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	s.mux.Handle("GET /{$}", s.dashboardHandler())
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", staticFilesHandler(config.WwwDir)))

	s.mux.Handle("GET /health", logReqMW(NewHealthHandler(svc)))

	s.mux.Handle("GET /api/log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")), db)))

	s.mux.Handle("GET /docs", logReqMW(s.docsHandler()))
	s.mux.HandleFunc("GET /docs/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapiSpec)
	})

	s.mux.Handle("GET /api/countries", logReqMW(NewCountriesHandler()))

	s.mux.Handle("GET /api/{country}/today", logReqMW(NewWindowHandler(
		logger.With(slog.String("handler", "today")), svc, window.Today)))

	s.mux.Handle("GET /api/{country}/tomorrow", logReqMW(NewWindowHandler(
		logger.With(slog.String("handler", "tomorrow")), svc, window.Tomorrow)))

	s.mux.Handle("GET /api/{country}/next24h", logReqMW(NewWindowHandler(
		logger.With(slog.String("handler", "next24h")), svc, window.Next24h)))

	s.mux.Handle("GET /api/{country}/next/{hours}", logReqMW(NewNextHoursHandler(
		logger.With(slog.String("handler", "next_hours")), svc)))

	s.mux.Handle("GET /api/providers", logReqMW(NewProvidersHandler()))

	// Literal routes per preset. A wildcard {provider} segment would collide
	// with /api/{country}/next/{hours} in the route table.
	for _, id := range providerIds() {
		handler := NewProviderPresetHandler(
			logger.With(slog.String("handler", "provider_"+id)), svc, id)
		s.mux.Handle(fmt.Sprintf("GET /api/providers/%s/{country}", id), logReqMW(handler))
	}

	// Shorthand for the single-country preset.
	s.mux.Handle("GET /api/providers/next-energy", logReqMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.SetPathValue("country", "nl")
		NewProviderPresetHandler(logger.With(slog.String("handler", "provider_next-energy")), svc, "next-energy").ServeHTTP(w, r)
	})))

	s.mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) dashboardHandler() http.HandlerFunc {
	return s.templatePage("index.html")
}

func (s *Server) docsHandler() http.HandlerFunc {
	return s.templatePage("docs.html")
}

func (s *Server) templatePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.tm == nil {
			http.Error(w, "templates unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		if err := s.tm.ExecuteToWriter(name, nil, &w); err != nil {
			s.logger.Error("handling template request",
				slog.String("template", name), slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

type tickerRow struct {
	Country  string
	Currency string
	Hour     string
	Price    float64
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "port", s.config.Port)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler: s.mux,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	// Keeping state to avoid spamming logs
	fetchErrorState := map[string]bool{}

	for {
		select {
		case err := <-srvErrors:
			if err != nil && err != http.ErrServerClosed {
				s.logger.Error("server error", slog.Any("error", err))
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return

		case <-ticker.C:
			if s.tm == nil {
				continue
			}

			rows := s.currentPrices(ctx, fetchErrorState)
			if len(rows) == 0 {
				continue
			}

			buf, err := s.tm.Execute("price_ticker.html", rows)
			if err != nil {
				s.logger.Error("template execution failed", slog.Any("error", err))
				continue
			}

			s.hub.Broadcast <- buf.Bytes()
		}
	}
}

// currentPrices collects the running hour's raw price for every country the
// ticker shows. Prices come from the cache after the first round.
func (s *Server) currentPrices(ctx context.Context, errorState map[string]bool) []tickerRow {
	var rows []tickerRow
	for _, countryCode := range s.tickerCountries() {
		res, err := s.svc.GetWindow(ctx, countryCode, window.NextN, 1, time.Now(), markup.Config{})
		if err != nil {
			if !errorState[countryCode] {
				errorState[countryCode] = true
				s.logger.Warn("failed to get current price",
					slog.String("country", countryCode), slog.Any("error", err))
			}
			continue
		}
		errorState[countryCode] = false

		if len(res.Points) == 0 {
			continue
		}

		rows = append(rows, tickerRow{
			Country:  strings.ToUpper(countryCode),
			Currency: res.Profile.Currency,
			Hour:     res.Points[0].Hour,
			Price:    res.Points[0].FinalPrice,
		})
	}
	return rows
}

func (s *Server) tickerCountries() []string {
	if len(s.config.TickerCountries) > 0 {
		return s.config.TickerCountries
	}
	return []string{"nl", "de", "be"}
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
