package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"LowesMerge/internal/appmanager"
	"LowesMerge/internal/archive"
	"LowesMerge/internal/audit"
)

// InitPool connects to Postgres when DB_* env vars are set. A nil pool means
// runs are not audited.
func InitPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn, ok := audit.DSNFromEnv()
	if !ok {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := audit.NewStore(pool).EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func servicesPath() string {
	if p := os.Getenv("SERVICES_FILE"); p != "" {
		return p
	}
	return "services.yaml"
}

func main() {
	// Load .env for local dev
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := InitPool(ctx)
	cancel()
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	if pool != nil {
		defer pool.Close()
		appmanager.SetPgxPool(pool)
		log.Println("[INFO] run audit enabled")
	}

	if settings := archive.SettingsFromEnv(); settings.Enabled {
		a, err := archive.NewS3Archiver(context.Background(), settings)
		if err != nil {
			log.Fatal("failed to configure report archive:", err)
		}
		appmanager.SetArchiver(a)
		log.Printf("[INFO] archiving reports to s3://%s/%s", settings.Bucket, settings.Prefix)
	}

	manager := appmanager.NewAppManager()

	// Load service configs from YAML
	servicesCfg, err := appmanager.LoadServiceSequence(servicesPath())
	if err != nil {
		log.Fatal("failed to load service sequence:", err)
	}

	if err := manager.AutoRegisterServices(servicesCfg); err != nil {
		log.Fatal("failed to register services:", err)
	}

	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start:", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := manager.StopAll(); err != nil {
		log.Fatal("failed to stop:", err)
	}
}
