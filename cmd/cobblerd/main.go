package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ycedres/cobbler/internal/codec"
	"github.com/ycedres/cobbler/internal/config"
	"github.com/ycedres/cobbler/internal/domain"
	"github.com/ycedres/cobbler/internal/manager"
	"github.com/ycedres/cobbler/internal/repository/sqlite"
	"github.com/ycedres/cobbler/internal/service"
	"github.com/ycedres/cobbler/internal/watcher"
)

func main() {
	settingsPath := flag.String("settings", "", "settings file path (default: discovered)")
	dbPath := flag.String("db", "", "item database path (default: from settings)")
	eager := flag.Bool("eager", false, "hydrate every item at startup instead of lazily")
	syncOnce := flag.Bool("sync", false, "run one DHCP sync and exit")
	importPath := flag.String("import", "", "import an item dump (json or yaml) before starting")
	exportPath := flag.String("export", "", "export all items to a dump (json or yaml) and exit")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	settings, path, err := loadSettings(*settingsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load settings")
	}
	if level, err := zerolog.ParseLevel(settings.LogLevel); err == nil {
		logger = logger.Level(level)
	}
	if path != "" {
		logger.Info().Str("path", path).Msg("settings loaded")
	} else {
		logger.Info().Msg("no settings file found, using defaults")
	}

	database := settings.DatabasePath
	if *dbPath != "" {
		database = *dbPath
	}
	store, err := sqlite.New(database)
	if err != nil {
		logger.Fatal().Err(err).Str("path", database).Msg("open item database")
	}
	defer store.Close()
	logger.Info().Str("path", database).Msg("item database opened")

	registry := domain.NewRegistry(settings, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := registry.LoadAll(ctx, !*eager); err != nil {
		logger.Fatal().Err(err).Msg("load items")
	}
	for _, t := range domain.ItemTypes {
		if n := registry.Items(t).Len(); n > 0 {
			logger.Info().Str("type", string(t)).Int("count", n).Msg("collection loaded")
		}
	}

	dhcp := manager.NewDHCP(settings, registry, logger)
	items := service.NewItemService(registry, logger).WithDHCP(dhcp)

	if *importPath != "" {
		f, err := os.Open(*importPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("open import file")
		}
		err = items.Import(ctx, f, importerFor(*importPath))
		f.Close()
		if err != nil {
			logger.Fatal().Err(err).Msg("import items")
		}
		logger.Info().Str("path", *importPath).Msg("items imported")
	}

	if *exportPath != "" {
		f, err := os.Create(*exportPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("create export file")
		}
		err = items.Export(f, exporterFor(*exportPath))
		f.Close()
		if err != nil {
			logger.Fatal().Err(err).Msg("export items")
		}
		logger.Info().Str("path", *exportPath).Msg("items exported")
		return
	}

	if settings.ManageDHCPv4 || settings.ManageDHCPv6 {
		if err := dhcp.Sync(ctx); err != nil {
			logger.Error().Err(err).Msg("dhcp sync")
			if *syncOnce {
				os.Exit(1)
			}
		}
	}
	if *syncOnce {
		return
	}

	// Watch the settings file: settings sit at the root of every
	// resolution chain, so a change flushes all caches and triggers a
	// resync.
	if path != "" {
		w := watcher.New(path, logger, func() {
			reloaded, _, err := config.LoadFromPath(path)
			if err != nil {
				logger.Error().Err(err).Msg("reload settings")
				return
			}
			*settings = *reloaded
			registry.FlushCaches()
			logger.Info().Msg("settings reloaded, item caches flushed")
			if settings.ManageDHCPv4 || settings.ManageDHCPv6 {
				if err := dhcp.Sync(ctx); err != nil {
					logger.Error().Err(err).Msg("dhcp sync after settings reload")
				}
			}
		})
		go func() {
			if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("settings watcher stopped")
			}
		}()
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")
}

func loadSettings(path string) (*config.Settings, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func importerFor(path string) codec.Importer {
	if strings.HasSuffix(path, ".json") {
		return codec.NewJSONCodec()
	}
	return codec.NewYAMLCodec()
}

func exporterFor(path string) codec.Exporter {
	if strings.HasSuffix(path, ".json") {
		return codec.NewJSONCodec()
	}
	return codec.NewYAMLCodec()
}
