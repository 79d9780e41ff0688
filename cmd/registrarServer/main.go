package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Layr-Labs/avs-registrar-go/pkg/config"
	"github.com/Layr-Labs/avs-registrar-go/pkg/delegation"
	"github.com/Layr-Labs/avs-registrar-go/pkg/delegation/caller"
	"github.com/Layr-Labs/avs-registrar-go/pkg/logger"
	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence/badger"
	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence/memory"
	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence/redis"
	"github.com/Layr-Labs/avs-registrar-go/pkg/registrar"
	"github.com/Layr-Labs/avs-registrar-go/pkg/signing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "registrar-server",
		Usage: "AVS operator and validator registration server",
		Description: `An admission engine for an AVS built on EigenPod custody.

This server implements:
- Operator registration gated on delegation and an ECDSA registration signature
- Validator registration gated on BLS proof of possession over BN254
- Salt-scoped replay protection for all registration signatures
- An append-only, replayable registry event log`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "avs-address",
				Aliases:  []string{"avs"},
				Usage:    "Address of the AVS to admit operators and validators for",
				EnvVars:  []string{config.EnvRegistrarAVSAddress},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8000,
				Usage:   "HTTP server port",
				EnvVars: []string{config.EnvRegistrarPort},
			},
			&cli.Uint64Flag{
				Name:     "chain-id",
				Aliases:  []string{"chain"},
				Usage:    fmt.Sprintf("Ethereum chain ID: %s", config.GetSupportedChainIDsString()),
				EnvVars:  []string{config.EnvRegistrarChainID},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Aliases: []string{"rpc"},
				Usage:   "Ethereum RPC endpoint URL",
				Value:   "http://localhost:8545",
				EnvVars: []string{config.EnvRegistrarRPCURL},
			},
			&cli.StringFlag{
				Name:    "persistence",
				Usage:   "Persistence backend: memory, badger, or redis",
				Value:   "memory",
				EnvVars: []string{config.EnvRegistrarPersistence},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Data directory for the badger backend",
				EnvVars: []string{config.EnvRegistrarDataDir},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis server address (host:port) for the redis backend",
				EnvVars: []string{config.EnvRegistrarRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvRegistrarRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number (0-15)",
				EnvVars: []string{config.EnvRegistrarRedisDB},
			},
			&cli.BoolFlag{
				Name:    "stub-delegation",
				Usage:   "Use an in-memory delegation oracle instead of the core contracts (local development only)",
				EnvVars: []string{config.EnvRegistrarStubDelegation},
			},
			&cli.Int64Flag{
				Name:    "max-expiry-window",
				Usage:   "Maximum seconds a signature expiry may lie in the future (0 disables the bound)",
				Value:   86400,
				EnvVars: []string{config.EnvRegistrarMaxExpiryWindow},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvRegistrarVerbose},
			},
		},
		Action: runRegistrarServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runRegistrarServer(c *cli.Context) error {
	// Create logger
	loggerConfig := &logger.LoggerConfig{
		Debug: c.Bool("verbose"),
	}
	l, err := logger.NewLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	// Parse configuration from flags/environment
	cfg := parseRegistrarConfig(c)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l.Sugar().Infow("Using chain", "name", cfg.ChainName, "chain_id", cfg.ChainID)

	// Create the backing store
	store, err := buildStore(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to create persistence store: %w", err)
	}
	defer func() { _ = store.Close() }()

	// Create the delegation oracle
	var oracle delegation.IDelegationOracle
	if cfg.StubDelegation {
		l.Sugar().Warnw("Using in-memory delegation oracle; admission checks are not backed by the chain")
		oracle = delegation.NewInMemoryOracle()
	} else {
		ethClient, err := ethclient.Dial(cfg.RpcUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to Ethereum RPC at %s: %w", cfg.RpcUrl, err)
		}
		oracle, err = caller.NewContractOracle(ethClient, l)
		if err != nil {
			return fmt.Errorf("failed to create contract oracle: %w", err)
		}
	}

	reg, err := registrar.NewRegistrar(
		common.HexToAddress(cfg.AVSAddress),
		store,
		oracle,
		signing.NewBN254Verifier(),
		l,
		registrar.WithMaxExpiryWindow(time.Duration(cfg.MaxExpiryWindowSeconds)*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create registrar: %w", err)
	}

	server := registrar.NewServer(reg, store, l, cfg.Port)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	l.Sugar().Infow("Registrar server running", "avs", cfg.AVSAddress, "port", cfg.Port)
	l.Sugar().Infow("Available endpoints",
		"operator_register", "POST /operator/register",
		"operator_deregister", "POST /operator/deregister",
		"validator_register", "POST /validator/register",
		"validator_revoke", "POST /validator/revoke",
		"reads", "GET /operator /operators /validator /validators /events /health")
	l.Sugar().Info("Press Ctrl+C to stop")

	// Keep the server running
	select {}
}

func buildStore(cfg *config.RegistrarConfig, l *zap.Logger) (persistence.IRegistryStore, error) {
	switch cfg.Persistence.Type {
	case config.PersistenceTypeMemory:
		return memory.NewMemoryStore(), nil
	case config.PersistenceTypeBadger:
		return badger.NewBadgerStore(cfg.Persistence.DataDir, l)
	case config.PersistenceTypeRedis:
		return redis.NewRedisStore(&redis.RedisConfig{
			Address:  cfg.Persistence.RedisAddress,
			Password: cfg.Persistence.RedisPassword,
			DB:       cfg.Persistence.RedisDB,
		}, l)
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s", cfg.Persistence.Type)
	}
}

func parseRegistrarConfig(c *cli.Context) *config.RegistrarConfig {
	return &config.RegistrarConfig{
		AVSAddress: c.String("avs-address"),
		Port:       c.Int("port"),
		ChainID:    config.ChainId(c.Uint64("chain-id")),
		RpcUrl:     c.String("rpc-url"),
		Persistence: &config.PersistenceConfig{
			Type:          config.PersistenceType(c.String("persistence")),
			DataDir:       c.String("data-dir"),
			RedisAddress:  c.String("redis-address"),
			RedisPassword: c.String("redis-password"),
			RedisDB:       c.Int("redis-db"),
		},
		StubDelegation:         c.Bool("stub-delegation"),
		MaxExpiryWindowSeconds: c.Int64("max-expiry-window"),
		Debug:                  c.Bool("verbose"),
		Verbose:                c.Bool("verbose"),
	}
}
