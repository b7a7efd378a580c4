package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/optrader/optrader/internal/action"
	"github.com/optrader/optrader/internal/alerts"
	"github.com/optrader/optrader/internal/config"
	"github.com/optrader/optrader/internal/fetcher"
	"github.com/optrader/optrader/internal/hedge"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/observ"
	"github.com/optrader/optrader/internal/portfolio"
	"github.com/optrader/optrader/internal/provider"
	tsignal "github.com/optrader/optrader/internal/signal"
	"github.com/optrader/optrader/internal/strategy"
	"github.com/optrader/optrader/internal/trader"
)

const positionsCollection = "unusual_volume_positions"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := ledger.ValidateSchema(); err != nil {
		log.Fatalf("position schema: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	var alerter alerts.Alerter
	if cfg.Alerts.Enabled {
		wh, err := alerts.NewWebhook(alerts.WebhookConfig{
			URL:        cfg.Alerts.WebhookURL,
			Sender:     cfg.Alerts.Sender,
			Recipients: cfg.Alerts.Recipients,
		})
		if err != nil {
			observ.LogError("alerter_disabled", err, nil)
		} else {
			alerter = wh
		}
	}

	prov, err := provider.NewHTTP(provider.HTTPConfig{
		BaseURL:            cfg.Provider.BaseURL,
		APIKey:             cfg.Provider.APIKey,
		RateLimitPerMinute: cfg.Provider.RateLimitPerMinute,
		TimeoutSeconds:     cfg.Provider.TimeoutSeconds,
	})
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	managers := buildManagers(cfg, store)
	queue := action.NewQueue()
	processor := action.NewProcessor(queue)

	live := fetcher.NewLive(prov, queue, cfg.Tickers, cfg.Scanner.BatchSize, managers, store,
		fetcher.LiveConfig{
			BatchTimeout:        secondsDuration(cfg.Scanner.BatchTimeoutSeconds),
			StrikeCount:         cfg.Scanner.StrikeCount,
			DaysToExpirationMax: cfg.Scanner.DaysToExpirationMax,
		}, cfg.Scanner.EnableRebalance)
	replay := fetcher.NewReplay(cfg.Scanner.ReplayDate, queue, cfg.Tickers, managers, store)

	go serveMetrics(cfg.Metrics.Addr)

	t := trader.New(cfg, queue, processor, managers, live, replay, alerter)
	observ.Log("trader_starting", map[string]any{
		"replay": cfg.Scanner.EnableReplay, "tickers": len(cfg.Tickers),
		"backend": cfg.Database.Backend,
	})
	if err := t.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("trader: %v", err)
	}
	observ.Log("trader_stopped", nil)
}

func openStore(ctx context.Context, cfg *config.Config) (ledger.Store, error) {
	switch cfg.Database.Backend {
	case "redis":
		return ledger.NewRedisStore(ctx, cfg.Database.RedisURL)
	case "postgres":
		return ledger.NewPostgresStore(ctx, cfg.Database.PostgresURL)
	default:
		return ledger.NewMemoryStore(), nil
	}
}

func buildManagers(cfg *config.Config, store ledger.Store) []*portfolio.Manager {
	collection := positionsCollection
	if cfg.Scanner.EnableReplay {
		collection += "_replay"
	}

	base := &strategy.BaseStrategy{
		Store:      store,
		Collection: collection,
		Params:     portfolio.DefaultParams(),
	}

	var entries []tsignal.Entry
	entries = append(entries, &tsignal.BaseEntry{})
	if cfg.Scanner.EnableBSMSignal {
		entries = append(entries, &tsignal.BSMPrice{Params: base.Params})
	}
	exits := []tsignal.Exit{&tsignal.ExpiryExit{}}

	uv := strategy.NewUnusualVolume(base, entries, exits)
	m := portfolio.NewManager("unusual_volume", uv, store, collection)
	if cfg.Scanner.EnableRebalance {
		m = m.WithHedger(hedge.NewDelta(), cfg.Tickers, cfg.Scanner.HedgeSkew)
	}
	return []*portfolio.Manager{m}
}

func secondsDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observ.MetricsHandler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		observ.LogError("metrics_server_failed", err, map[string]any{"addr": addr})
	}
}
