package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/theoremus-urban-solutions/zhbus-go/config"
	"github.com/theoremus-urban-solutions/zhbus-go/internal"
	"github.com/theoremus-urban-solutions/zhbus-go/lookup"
	"github.com/theoremus-urban-solutions/zhbus-go/server"
	"github.com/theoremus-urban-solutions/zhbus-go/zhbus"
)

func main() {
	mode := flag.String("mode", "serve", "serve|query")
	configPath := flag.String("config", "", "config file (default: config.yml)")
	upstreamName := flag.String("upstream", "", "upstream name from config.upstreams[]")
	call := flag.String("call", "lines", "stations|lines|realtime|vm|gtfsrt (query mode)")
	line := flag.String("line", "", "line name (lines, realtime, vm, gtfsrt)")
	lineID := flag.String("lineId", "", "line id (stations; optional enrichment for vm, gtfsrt)")
	from := flag.String("from", "", "head station (realtime, vm, gtfsrt)")
	format := flag.String("format", "json", "json|xml|pb (vm: json|xml, gtfsrt: json|pb)")
	timeout := flag.Duration("timeout", 0, "per-query timeout (overrides config)")
	flag.Parse()

	logOut := internal.InitLogging()

	var paths []string
	if *configPath != "" {
		paths = []string{*configPath}
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	upstream := cfg.SelectUpstream(*upstreamName)
	callTimeout := upstream.Timeout()
	if *timeout > 0 {
		callTimeout = *timeout
	}
	client, err := zhbus.NewClient(upstream.BaseURL,
		zhbus.WithTimeout(callTimeout),
		zhbus.WithLocale(cfg.UI.Locale),
		zhbus.WithUserAgent(upstream.UserAgent),
	)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	switch *mode {
	case "serve":
		store, closeStore, err := lookup.NewStoreFromConfig(context.Background(), cfg.Cache, cfg.Redis)
		if err != nil {
			log.Fatalf("cache: %v", err)
		}
		defer func() { _ = closeStore() }()
		svc := lookup.NewService(client, store, cfg.Cache.StationTTL(), cfg.Cache.LineTTL())

		srv, err := server.New(svc, server.Options{
			Locale:      cfg.UI.Locale,
			ProducerRef: cfg.Feed.ProducerRef,
			Validity:    cfg.Feed.Validity(),
			StaticDir:   cfg.Server.StaticDir,
			CORSOrigins: cfg.Server.CORSOrigins,
			UpstreamURL: upstream.BaseURL,
			LogWriter:   logOut,
		})
		if err != nil {
			log.Fatalf("server: %v", err)
		}
		log.Printf("upstream %s, cache %s, locale %s", client.BaseURL(), cfg.Cache.Backend, cfg.UI.Locale)
		srv.Start(fmt.Sprintf(":%d", cfg.Server.Port))
		srv.HandleGracefulShutdown()
	case "query":
		q := query{
			svc:      lookup.NewService(client, nil, 0, 0),
			producer: cfg.Feed.ProducerRef,
			validity: cfg.Feed.Validity(),
		}
		// Ctrl-C cancels the in-flight query
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		out, err := q.run(ctx, *call, *line, *lineID, *from, *format)
		if err != nil {
			log.Printf("query %s: %v", *call, err)
			cancel()
			os.Exit(1)
		}
		_, _ = os.Stdout.Write(out)
		if *format != "pb" {
			fmt.Println()
		}
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}
