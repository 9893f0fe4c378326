package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra/credentials"
)

// genkey stores the asset-generation API key in the integration_tokens table
// so deployments can rotate credentials without touching the environment.
func main() {
	var keyFlag string
	flag.StringVar(&keyFlag, "key", "", "API key for the generation service (falls back to ASSETGEN_API_KEY)")
	flag.Parse()

	_ = godotenv.Load()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("ASSETGEN_API_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "assetgen API key is required via -key or ASSETGEN_API_KEY")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "genkey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	execCtx, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()
	if err := store.SetAssetGenAPIKey(execCtx, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist assetgen api key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("assetgen api key stored")
}
