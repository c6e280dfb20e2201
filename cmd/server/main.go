// Package main initializes and starts the NoteKeeper server, setting up
// configuration, logging, storage, repositories, services, handlers and
// optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/config"
	"github.com/atinyakov/NoteKeeper/internal/db"
	"github.com/atinyakov/NoteKeeper/internal/logger"
	"github.com/atinyakov/NoteKeeper/internal/media"
	"github.com/atinyakov/NoteKeeper/internal/repository"
	"github.com/atinyakov/NoteKeeper/internal/server/handler/http"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"github.com/atinyakov/NoteKeeper/internal/share"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// repositories groups the persistence backends used by the services.
type repositories struct {
	notes    service.NoteRepository
	versions service.VersionRepository
	tags     service.TagRepository
	media    service.MediaRepository
	shares   service.ShareRepository
	links    share.LinkFinder
	shared   service.SharedNoteRepository
}

func openRepositories(options *config.Options) (*repositories, func(), error) {
	if options.UseInMemory {
		m := repository.NewMemoryStore()
		return &repositories{notes: m, versions: m, tags: m, media: m, shares: m, links: m, shared: m}, func() {}, nil
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	shares := repository.NewPostgresShareRepository(postgresDB)
	return &repositories{
		notes:    repository.NewPostgresNoteRepository(postgresDB),
		versions: repository.NewPostgresVersionRepository(postgresDB),
		tags:     repository.NewPostgresTagRepository(postgresDB),
		media:    repository.NewPostgresMediaRepository(postgresDB),
		shares:   shares,
		links:    shares,
		shared:   shares,
	}, func() { _ = postgresDB.Close() }, nil
}

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := openRepositories(options)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer closeRepos()

	blobs, err := media.NewFSStore(options.StorageRoot)
	if err != nil {
		zapLogger.Fatal("cannot init media storage", zap.Error(err))
	}

	clk := clock.Real()

	// Initialize business-logic services.
	noteService := service.NewNoteService(repos.notes, repos.media, blobs, clk, zapLogger)
	mediaService := service.NewMediaService(repos.media, repos.notes, blobs, clk, zapLogger, options.PublicBaseURL+"/storage")
	sharedNoteService := service.NewSharedNoteService(repos.shared, clk)
	functionClient := share.NewFunctionClient(&nethttp.Client{Timeout: 10 * time.Second},
		options.FunctionsBaseURL, options.ServiceKey)

	// Purge notes that stayed in the trash past the retention period.
	if options.TrashRetention > 0 && options.TrashInterval > 0 {
		db.StartSoftDeleteCleaner(ctx, noteService, clk, options.TrashInterval, options.TrashRetention, zapLogger)
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Notes: &http.NoteHandler{
			Notes:    noteService,
			Versions: service.NewVersionService(repos.versions, repos.notes, clk),
			Log:      zapLogger,
		},
		Tags:  &http.TagHandler{Tags: service.NewTagService(repos.tags, clk), Log: zapLogger},
		Media: &http.MediaHandler{Media: mediaService, Log: zapLogger},
		Shares: &http.ShareHandler{
			Shares:   service.NewShareService(repos.shares, repos.notes, clk, options.PublicBaseURL),
			Resolver: service.NewResolverService(repos.links, functionClient, clk),
			Fetcher:  sharedNoteService,
			Log:      zapLogger,
		},
		Export: &http.ExportHandler{Export: service.NewExportService(repos.notes, mediaService, clk), Log: zapLogger},
	}, http.AuthConfig{JWTSecret: []byte(options.JWTSecret), ServiceKey: options.ServiceKey}, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSCert != "" {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting server", zap.String("addr", options.Address), zap.Bool("tls", options.TLSCert != ""))
	if options.TLSCert != "" {
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
}
