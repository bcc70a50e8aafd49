package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/theoremus-urban-solutions/zhbus-go/lookup"
)

// Options configure the HTTP backend
type Options struct {
	Locale      string        // handed to the UI via /api/config
	ProducerRef string        // SIRI DataSource / ProducerRef
	Validity    time.Duration // SIRI ValidUntil offset
	StaticDir   string        // built UI; "" disables static serving
	CORSOrigins []string      // empty or "*" allows all
	UpstreamURL string        // target of the /api/zhbus proxy; "" disables it
	LogWriter   io.Writer     // access log destination; nil discards
}

// Server is the HTTP backend of the bus map UI
type Server struct {
	svc        *lookup.Service
	opts       Options
	engine     *gin.Engine
	proxy      *httputil.ReverseProxy
	httpServer *http.Server
}

// New builds the router. svc is the only data source.
func New(svc *lookup.Service, opts Options) (*Server, error) {
	s := &Server{svc: svc, opts: opts}
	if opts.UpstreamURL != "" {
		p, err := newUpstreamProxy(opts.UpstreamURL)
		if err != nil {
			return nil, err
		}
		s.proxy = p
	}
	s.engine = s.setupRouter()
	return s, nil
}

// Handler returns the router
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	logOut := s.opts.LogWriter
	if logOut == nil {
		logOut = io.Discard
	}
	router.Use(requestID(), accessLog(logOut), gin.Recovery())
	router.Use(cors.New(corsConfig(s.opts.CORSOrigins)))

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/config", s.handleConfig)

		api.GET("/lines", s.handleLines)
		api.GET("/lines/:id/stations", s.handleStations)
		api.GET("/realtime", s.handleRealTime)

		api.GET("/siri/vehicle-monitoring.json", s.handleVehicleMonitoringJSON)
		api.GET("/siri/vehicle-monitoring.xml", s.handleVehicleMonitoringXML)
		api.GET("/gtfsrt/vehicle-positions.pb", s.handleVehiclePositions)

		if s.proxy != nil {
			api.Any("/zhbus/*path", s.handleProxy)
		}
	}

	if dir := s.opts.StaticDir; dir != "" {
		router.Static("/static", filepath.Join(dir, "static"))
		router.StaticFile("/", filepath.Join(dir, "index.html"))
		router.StaticFile("/index.html", filepath.Join(dir, "index.html"))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	all := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			all = true
		}
	}
	if all {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Start serves on addr in the background
func (s *Server) Start(addr string) {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
}

// Shutdown stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// HandleGracefulShutdown blocks until SIGINT or SIGTERM, then shuts s down
func (s *Server) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.Printf("%v", err)
	} else {
		log.Printf("server shut down successfully")
	}
}
