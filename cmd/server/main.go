package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/floatplan/floatplan/pkg/conditions"
	"github.com/floatplan/floatplan/pkg/river"
	"github.com/floatplan/floatplan/pkg/routing"
	"github.com/floatplan/floatplan/pkg/server/riverapi"
)

func main() {
	networkFile := flag.String("network", "", "river network file built by network-builder")
	addr := flag.String("addr", ":8081", "listen address")
	snapDistance := flag.Float64("snap-distance", river.DefaultMaxSnapDistanceM, "maximum snap distance in meters")
	conditionsURL := flag.String("conditions-url", "", "live conditions feed endpoint (optional)")
	conditionsTTL := flag.Duration("conditions-ttl", 15*time.Minute, "live conditions cache ttl")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *networkFile == "" {
		logger.Error("missing -network flag")
		os.Exit(2)
	}

	start := time.Now()
	repo, err := river.LoadRepository(*networkFile)
	if err != nil {
		logger.Error("load network", "file", *networkFile, "error", err)
		os.Exit(1)
	}
	logger.Info("network loaded", "file", *networkFile, "edges", repo.EdgeCount(), "elapsed", time.Since(start))

	var feed conditions.Feed
	if *conditionsURL != "" {
		feed = conditions.NewCachedFeed(
			conditions.HTTPSource(*conditionsURL, &http.Client{Timeout: 10 * time.Second}),
			conditions.SystemClock(), *conditionsTTL, logger)
	} else {
		logger.Info("no conditions feed configured, using baseline velocities only")
		feed = &conditions.StaticFeed{}
	}

	engine := routing.NewEngine(repo, feed, *snapDistance, logger)
	service := riverapi.NewRouterApiService(engine, repo, feed, logger)
	controller := riverapi.NewRouterApiController(service)
	router := riverapi.NewRouter(controller)

	logger.Info("listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
