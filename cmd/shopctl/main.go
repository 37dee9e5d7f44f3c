// shopctl is an operator tool for the collection store: import/export
// collections, inspect records, adjust stock and force cache refreshes. It
// talks to the same backing medium as the server processes, selected by the
// same environment variables.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/oybekdev/shopcore/config"
	invUCPkg "github.com/oybekdev/shopcore/internal/inventory/usecase"

	invdto "github.com/oybekdev/shopcore/internal/inventory/dto"
	"github.com/oybekdev/shopcore/internal/model"
	"github.com/oybekdev/shopcore/internal/store"
	"github.com/oybekdev/shopcore/pkg/lock"
	"github.com/oybekdev/shopcore/pkg/logger"
)

const usage = `usage: shopctl <command> [args]

commands:
  export <collection>                 print a collection as JSON
  import <collection> <file>          upsert records from a JSON array file
  get <collection> <id>               print one record
  count <collection>                  print the record count
  remove <collection> <id>            delete one record
  clear-cache <collection>            drop the cached snapshot
  adjust <productId> <size> <delta>   adjust size-keyed inventory quantity
  movements <productId>               print the stock audit trail
`

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logConfig := &logger.ZapLoggerConfig{
		Encoding:          "json",
		Level:             "info",
		DisableStacktrace: true,
	}
	if cfg.App.Env == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = cfg.Logger.Level
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, cleanup, err := buildStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer cleanup()

	if err := run(ctx, cfg, s, appLogger, os.Args[1], os.Args[2:]); err != nil {
		appLogger.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

// buildStore selects the backing medium: local files by default, the remote
// object store when NATS credentials are present.
func buildStore(ctx context.Context, cfg *config.Config, appLogger logger.ZapLogger) (*store.Store, func(), error) {
	opts := []store.Option{
		store.WithLogger(appLogger),
		store.WithCacheTTL(cfg.Cache.TTL),
	}

	if cfg.RemoteMode() {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect NATS: %w", err)
		}
		backend, err := store.NewObjectBackend(ctx, nc, &store.ObjectBackendConfig{
			Bucket:    cfg.NATS.Bucket,
			OpTimeout: cfg.NATS.OpTimeout,
		})
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		appLogger.Info("using remote object storage",
			zap.String("url", cfg.NATS.URL), zap.String("bucket", cfg.NATS.Bucket))
		return store.New(backend, opts...), nc.Close, nil
	}

	backend, err := store.NewFileBackend(cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, err
	}
	appLogger.Info("using local file storage", zap.String("dataDir", cfg.Storage.DataDir))
	return store.New(backend, opts...), func() {}, nil
}

func buildLocker(cfg *config.Config, appLogger logger.ZapLogger) lock.Locker {
	if cfg.Redis.Addr != "" {
		locker, err := lock.NewRedisLocker(&lock.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			appLogger.Info("using redis stock locks", zap.String("addr", cfg.Redis.Addr))
			return locker
		}
		appLogger.Warn("redis unavailable, falling back to local locks", zap.Error(err))
	}
	return lock.NewLocalLocker()
}

func run(ctx context.Context, cfg *config.Config, s *store.Store, appLogger logger.ZapLogger, command string, args []string) error {
	switch command {
	case "export":
		if len(args) != 1 {
			return fmt.Errorf("export needs a collection name")
		}
		recs, err := s.GetAll(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(recs)

	case "import":
		if len(args) != 2 {
			return fmt.Errorf("import needs a collection name and a file")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var recs []store.Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return fmt.Errorf("parse %s: %w", args[1], err)
		}
		for _, rec := range recs {
			if _, err := s.Create(ctx, args[0], rec); err != nil {
				return err
			}
		}
		appLogger.Info("imported records", zap.String("collection", args[0]), zap.Int("count", len(recs)))
		return nil

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("get needs a collection name and an id")
		}
		rec, err := s.GetByID(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("record %s not found in %s", args[1], args[0])
		}
		return printJSON(rec)

	case "count":
		if len(args) != 1 {
			return fmt.Errorf("count needs a collection name")
		}
		n, err := s.Count(ctx, args[0], nil)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil

	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("remove needs a collection name and an id")
		}
		removed, err := s.Remove(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("record %s not found in %s", args[1], args[0])
		}
		return nil

	case "clear-cache":
		if len(args) != 1 {
			return fmt.Errorf("clear-cache needs a collection name")
		}
		s.ClearCache(args[0])
		return nil

	case "adjust":
		if len(args) != 3 {
			return fmt.Errorf("adjust needs a product id, a size and a delta")
		}
		delta, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid delta %q", args[2])
		}
		ledger := invUCPkg.NewStockUseCase(s, buildLocker(cfg, appLogger), appLogger)
		inv, err := ledger.AdjustInventory(ctx, &invdto.AdjustInventoryInput{
			ProductID:      args[0],
			Size:           args[1],
			QuantityChange: delta,
			Reason:         model.ReasonManualAdjustment,
			UserID:         "shopctl",
		})
		if err != nil {
			return err
		}
		return printJSON(inv)

	case "movements":
		if len(args) != 1 {
			return fmt.Errorf("movements needs a product id")
		}
		ledger := invUCPkg.NewStockUseCase(s, lock.NewLocalLocker(), appLogger)
		movements, err := ledger.ListMovements(ctx, &invdto.MovementFilters{ProductID: args[0]})
		if err != nil {
			return err
		}
		return printJSON(movements)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
