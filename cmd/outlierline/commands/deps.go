package commands

import (
	"context"
	"fmt"

	"github.com/wonny/outlierline/internal/archive"
	"github.com/wonny/outlierline/internal/external/statsapi"
	"github.com/wonny/outlierline/internal/layoutconfig"
	"github.com/wonny/outlierline/internal/outliers"
	"github.com/wonny/outlierline/pkg/config"
	"github.com/wonny/outlierline/pkg/database"
	"github.com/wonny/outlierline/pkg/httputil"
	"github.com/wonny/outlierline/pkg/logger"
	"github.com/wonny/outlierline/pkg/redis"
)

const cachePrefix = "outlierline"

// deps holds the shared components every command builds the same way
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	upstream *statsapi.Client
	builder  *outliers.Builder
	db       *database.DB        // nil when the archive is disabled
	archive  *archive.Repository // nil when the archive is disabled
}

// newDeps wires config → logger → redis → http client → upstream → builder → archive
func newDeps(withArchive bool) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	if err := loadLayout(cfg, log); err != nil {
		return nil, err
	}

	builder, err := outliers.NewBuilderFromConfig(cfg.Bars)
	if err != nil {
		return nil, fmt.Errorf("bar config: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	httpClient := httputil.New(cfg, log)
	var cache *redis.Cache
	if rdb.Enabled() {
		cache = redis.NewCache(rdb, cachePrefix)
		limiter := redis.NewRateLimiter(rdb, cachePrefix)
		httpClient.WithRateLimiter(limiter, redis.StatsAPIRateLimit(cfg.StatsAPI.RequestsPerS))
		log.Info("Redis cache and shared rate limit enabled")
	}

	d := &deps{
		cfg:      cfg,
		log:      log,
		redis:    rdb,
		upstream: statsapi.NewClient(cfg, httpClient, cache, log),
		builder:  builder,
	}

	if withArchive && cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		d.archive = archive.NewRepository(db.Pool)

		if err := d.archive.EnsureSchema(context.Background()); err != nil {
			d.Close()
			return nil, err
		}
		log.Info("Payload archive enabled")
	}

	return d, nil
}

// loadLayout applies the optional bar layout file to cfg.Bars
func loadLayout(cfg *config.Config, log *logger.Logger) error {
	if cfg.Bars.LayoutFile == "" {
		return nil
	}

	layout, _, err := layoutconfig.Load(cfg.Bars.LayoutFile)
	if err != nil {
		return fmt.Errorf("load bar layout: %w", err)
	}
	layout.Apply(&cfg.Bars)

	fields := map[string]interface{}{
		"layout_id": layout.Meta.LayoutID,
		"version":   layout.Meta.Version,
		"path":      cfg.Bars.LayoutFile,
	}
	hash, err := layoutconfig.Hash(layout)
	if err != nil {
		log.WithError(err).Warn("Failed to hash bar layout")
	} else {
		fields["hash"] = hash
	}
	log.WithFields(fields).Info("Bar layout loaded")

	return nil
}

// Close releases connections
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}
