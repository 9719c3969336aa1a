package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/terrain.report/internal/api"
	"github.com/banshee-data/terrain.report/internal/config"
	"github.com/banshee-data/terrain.report/internal/db"
	"github.com/banshee-data/terrain.report/internal/fsutil"
	"github.com/banshee-data/terrain.report/internal/session"
	"github.com/banshee-data/terrain.report/internal/version"
	"github.com/banshee-data/terrain.report/internal/viewer"
)

var (
	listen      = flag.String("listen", ":8080", "HTTP listen address")
	dbFile      = flag.String("db", "terrain.db", "Path to the SQLite history database (empty disables history)")
	configFile  = flag.String("config", "", "Path to a viewer configuration JSON file")
	loadFile    = flag.String("load", "", "Grid document to load at startup")
	unitsFlag   = flag.String("units", "", "Display units override: m or ft")
	devMode     = flag.Bool("dev", false, "Run in dev mode (migrations read from the working tree)")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

// loadConfig reads the viewer configuration and applies flag overrides.
func loadConfig(path, unitsOverride string) (*config.ViewerConfig, error) {
	cfg := config.EmptyViewerConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadViewerConfig(path)
		if err != nil {
			return nil, err
		}
	}
	if unitsOverride != "" {
		cfg.Units = &unitsOverride
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// preloadGrid loads a grid document from disk into the session before the
// server starts taking requests.
func preloadGrid(sess *session.Session, fileSystem fsutil.FileSystem, path string) error {
	f, err := fileSystem.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := sess.Load(filepath.Base(path), session.SourceFile, f)
	if err != nil {
		return err
	}
	log.Printf("loaded %s: %dx%d cells, heights %g..%g",
		snap.Name, snap.Grid.Header.Columns, snap.Grid.Header.Rows,
		snap.Field.Stats.MinValid, snap.Field.Stats.MaxValid)
	return nil
}

// Main
func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("terrain.report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	// The migrate subcommand manages the schema and exits without starting
	// the server
	if args := flag.Args(); len(args) > 0 && args[0] == "migrate" {
		db.RunMigrateCommand(args[1:], *dbFile)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	if *devMode {
		db.DevMode = true
	}

	cfg, err := loadConfig(*configFile, *unitsFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sess := session.New(cfg.ReliefParams(), nil)

	var database *db.DB
	if *dbFile != "" {
		database, err = db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
	} else {
		log.Print("load history disabled (no database path)")
	}

	if *loadFile != "" {
		if err := preloadGrid(sess, fsutil.OSFileSystem{}, *loadFile); err != nil {
			log.Fatalf("Failed to load %s: %v", *loadFile, err)
		}
	}

	webServer := viewer.NewWebServer(viewer.WebServerConfig{
		Address: *listen,
		Session: sess,
		Config:  cfg,
		DB:      database,
		API:     api.NewServer(sess, database, cfg, nil),
		DBPath:  *dbFile,
	})

	// Create a wait group for the HTTP server routine
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := webServer.Start(ctx); err != nil {
			log.Printf("web server error: %v", err)
		}
	}()

	log.Printf("terrain.report %s serving on %s (units=%s, view=%s)",
		version.Version, *listen, cfg.GetUnits(), cfg.GetViewMode())

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
