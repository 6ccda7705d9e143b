package main

import (
	"context"
	"flag"
	"log"
	stdhttp "net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"

	"github.com/rockspoon/soajs.oauth/internal/cache"
	"github.com/rockspoon/soajs.oauth/internal/config"
	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/engine"
	httpserver "github.com/rockspoon/soajs.oauth/internal/http"
	"github.com/rockspoon/soajs.oauth/internal/http/handlers"
	mw "github.com/rockspoon/soajs.oauth/internal/http/middlewares"
	"github.com/rockspoon/soajs.oauth/internal/oauth"
	"github.com/rockspoon/soajs.oauth/internal/observability/logger"
	"github.com/rockspoon/soajs.oauth/internal/provision"
	"github.com/rockspoon/soajs.oauth/internal/rate"
	"github.com/rockspoon/soajs.oauth/internal/social/azure"
	"github.com/rockspoon/soajs.oauth/internal/store/cached"
	"github.com/rockspoon/soajs.oauth/internal/store/mysql"
	"github.com/rockspoon/soajs.oauth/internal/store/pg"

	_ "github.com/go-sql-driver/mysql"
)

type storage struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	provision repository.ProvisionSource
	close     func()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfgPath := flag.String("config", "", "path to YAML config (optional, env overrides apply)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "soajs-oauth",
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx := context.Background()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		lg.Fatal("storage init failed", logger.Err(err))
	}
	defer st.close()

	// Cache compartido: read-through de user records y rate limiting.
	cacheClient := cache.New(cache.Config{
		Driver:   cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	defer func() { _ = cacheClient.Close() }()

	users := repository.UserRepository(cached.NewUserStore(st.users, cacheClient, cfg.UserCacheTTL()))

	// Snapshot de provisión. El primer load es best-effort: si la DB no
	// responde todavía, /readyz reporta not ready y los grants devuelven 600
	// hasta que un reload pegue.
	prov := provision.NewCache(st.provision)
	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if ok := prov.Reload(loadCtx); !ok {
		lg.Warn("initial provision load failed, serving degraded until reload succeeds")
	}
	cancel()

	eng := engine.New(engine.Deps{Tokens: st.tokens})

	grants := oauth.NewGrantService(oauth.GrantDeps{
		Users:     users,
		Provision: prov,
		Engine:    eng,
	})
	revokes := oauth.NewRevokeService(oauth.RevokeDeps{
		Users:  users,
		Tokens: st.tokens,
	})

	var rateMW mw.Middleware
	if cfg.Rate.Enabled && cfg.Cache.Kind == "redis" {
		rc := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		defer func() { _ = rc.Close() }()
		rateMW = mw.WithRateLimit(rate.NewRedisLimiter(rc, "rl:oauth:", cfg.Rate.Limit, cfg.RateWindow()))
	}

	var azureLogin stdhttp.Handler
	if cfg.Azure.Enabled {
		p, err := azure.New(azure.Config{
			ClientID:          cfg.Azure.ClientID,
			ClientSecret:      cfg.Azure.ClientSecret,
			CallbackURL:       cfg.Azure.CallbackURL,
			Tenant:            cfg.Azure.Tenant,
			Resource:          cfg.Azure.Resource,
			UseCommonEndpoint: cfg.Azure.UseCommonEndpoint,
		})
		if err != nil {
			lg.Fatal("azure provider init failed", logger.Err(err))
		}
		azureLogin = handlers.AzureLogin(p)
	}

	metricsHandler := httpserver.RegisterMetrics(prometheus.DefaultRegisterer)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Token:              handlers.Token(grants),
		Pin:                handlers.Pin(grants),
		Authorization:      handlers.Authorization(prov),
		AzureLogin:         azureLogin,
		DeleteAccessToken:  handlers.DeleteAccessToken(revokes),
		DeleteRefreshToken: handlers.DeleteRefreshToken(revokes),
		DeleteUserTokens:   handlers.DeleteUserTokens(revokes),
		DeleteClientTokens: handlers.DeleteClientTokens(revokes),
		ReloadProvision:    handlers.ReloadProvision(prov, cfg.Admin.APIKey),
		Readyz:             handlers.Readyz(prov),
		Metrics:            metricsHandler,
		RateLimit:          rateMW,
	})

	lg.Info("oauth service listening",
		logger.Component("http"),
		logger.Op("start"),
	)
	if err := httpserver.Start(cfg.Server.Addr, router); err != nil {
		lg.Fatal("server stopped", logger.Err(err))
	}
}

// openStorage abre el backend configurado y devuelve los repositorios.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case "mysql":
		dsn := cfg.Storage.MySQL.DSN
		if dsn == "" {
			dsn = cfg.Storage.DSN
		}
		st, err := mysql.Open(cfg.Storage.MySQL.DriverName, dsn)
		if err != nil {
			return nil, err
		}
		return &storage{
			users:     st.Users(),
			tokens:    st.Tokens(),
			provision: st.Provision(),
			close:     func() { _ = st.Close() },
		}, nil
	default:
		var lifetime time.Duration
		if s := cfg.Storage.Postgres.ConnMaxLifetime; s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				lifetime = d
			}
		}
		st, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
			MaxConns:        int32(cfg.Storage.Postgres.MaxConns),
			ConnMaxLifetime: lifetime,
		})
		if err != nil {
			return nil, err
		}
		return &storage{
			users:     st.Users(),
			tokens:    st.Tokens(),
			provision: st.Provision(),
			close:     st.Close,
		}, nil
	}
}
