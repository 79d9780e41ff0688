package redis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixOperator    = "registrar:operator:"
	keyPrefixValidator   = "registrar:validator:"
	keyPrefixReplay      = "registrar:replay:"
	keyPrefixEvent       = "registrar:event:"
	keyEventSequence     = "registrar:event:seq"
	keySchemaVersion     = "registrar:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Index sets for listing operations (Redis doesn't support prefix
	// iteration natively)
	keySetOperators  = "registrar:operators:index"
	keySetValidators = "registrar:validators:index"

	defaultTimeout = 5 * time.Second
)

// RedisStore is a persistence implementation using Redis, suitable for
// cloud-native deployments where local disk is ephemeral.
//
// The admission orchestrator serializes all mutating calls, so the
// pre-check + pipelined-write pattern used here observes no concurrent
// writers for contended keys.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

var _ persistence.IRegistryStore = (*RedisStore)(nil)

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
}

// NewRedisStore creates a new Redis-backed registry store.
func NewRedisStore(cfg *RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	rs := &RedisStore{
		client: client,
		logger: logger,
	}

	if err := rs.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis registry store initialized", "address", cfg.Address, "db", cfg.DB)

	return rs, nil
}

// initSchema initializes or validates the schema version
func (r *RedisStore) initSchema(ctx context.Context) error {
	val, err := r.client.Get(ctx, keySchemaVersion).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, keySchemaVersion, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return err
	}
	if val != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version %q, expected %q", val, currentSchemaVersion)
	}
	return nil
}

func (r *RedisStore) GetOperator(operator common.Address) (*types.OperatorRecord, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, operatorKey(operator)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator %s: %w", operator.Hex(), err)
	}
	return persistence.UnmarshalOperatorRecord(data)
}

func (r *RedisStore) ListOperators() ([]*types.OperatorRecord, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	keys, err := r.client.SMembers(ctx, keySetOperators).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list operator index: %w", err)
	}
	records := make([]*types.OperatorRecord, 0, len(keys))
	for _, key := range sortStrings(keys) {
		data, err := r.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get operator at %s: %w", key, err)
		}
		record, err := persistence.UnmarshalOperatorRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisStore) GetValidator(blsPubKeyHash common.Hash) (*types.ValidatorRecord, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, validatorKey(blsPubKeyHash)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validator %s: %w", blsPubKeyHash.Hex(), err)
	}
	return persistence.UnmarshalValidatorRecord(data)
}

func (r *RedisStore) ListValidators() ([]*types.ValidatorRecord, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	keys, err := r.client.SMembers(ctx, keySetValidators).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list validator index: %w", err)
	}
	records := make([]*types.ValidatorRecord, 0, len(keys))
	for _, key := range sortStrings(keys) {
		data, err := r.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get validator at %s: %w", key, err)
		}
		record, err := persistence.UnmarshalValidatorRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisStore) HasReplayEntry(signer [32]byte, salt [32]byte) (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, replayKey(signer, salt)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check replay entry: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStore) ListEvents() ([]*types.RegistryEvent, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	seq, err := r.client.Get(ctx, keyEventSequence).Uint64()
	if err == redis.Nil {
		return []*types.RegistryEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event sequence: %w", err)
	}

	events := make([]*types.RegistryEvent, 0, seq)
	for i := uint64(1); i <= seq; i++ {
		data, err := r.client.Get(ctx, eventKey(i)).Bytes()
		if err != nil {
			return nil, fmt.Errorf("failed to get event %d: %w", i, err)
		}
		event, err := persistence.UnmarshalRegistryEvent(data)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *RedisStore) CommitOperatorRegistration(record *types.OperatorRecord, entry *persistence.ReplayEntry, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}
	data, err := persistence.MarshalOperatorRecord(record)
	if err != nil {
		return err
	}
	key := operatorKey(record.Operator)
	return r.commit(entry, event, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, keySetOperators, key)
	})
}

func (r *RedisStore) CommitOperatorDeregistration(record *types.OperatorRecord, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}
	data, err := persistence.MarshalOperatorRecord(record)
	if err != nil {
		return err
	}
	key := operatorKey(record.Operator)
	return r.commit(nil, event, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, keySetOperators, key)
	})
}

func (r *RedisStore) CommitValidatorRegistration(record *types.ValidatorRecord, entry *persistence.ReplayEntry, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}
	data, err := persistence.MarshalValidatorRecord(record)
	if err != nil {
		return err
	}
	key := validatorKey(record.BLSPubKeyHash)
	return r.commit(entry, event, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, keySetValidators, key)
	})
}

func (r *RedisStore) CommitValidatorRevocation(record *types.ValidatorRecord, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}
	data, err := persistence.MarshalValidatorRecord(record)
	if err != nil {
		return err
	}
	key := validatorKey(record.BLSPubKeyHash)
	return r.commit(nil, event, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, keySetValidators, key)
	})
}

// commit performs the shared commit path: replay uniqueness pre-check,
// sequence assignment, then a transactional pipeline writing the replay
// entry, the caller's record writes, and the event.
func (r *RedisStore) commit(entry *persistence.ReplayEntry, event *types.RegistryEvent, writeRecord func(ctx context.Context, pipe redis.Pipeliner)) error {
	if err := r.checkOpen(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var entryData []byte
	if entry != nil {
		n, err := r.client.Exists(ctx, replayKey(entry.Signer, entry.Salt)).Result()
		if err != nil {
			return fmt.Errorf("failed to check replay entry: %w", err)
		}
		if n > 0 {
			return persistence.ErrReplayEntryExists
		}
		entryData, err = persistence.MarshalReplayEntry(entry)
		if err != nil {
			return err
		}
	}

	seq, err := r.client.Incr(ctx, keyEventSequence).Result()
	if err != nil {
		return fmt.Errorf("failed to advance event sequence: %w", err)
	}
	event.Sequence = uint64(seq)

	eventData, err := persistence.MarshalRegistryEvent(event)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if entry != nil {
			pipe.SetNX(ctx, replayKey(entry.Signer, entry.Salt), entryData, 0)
		}
		writeRecord(ctx, pipe)
		pipe.Set(ctx, eventKey(event.Sequence), eventData, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit registry mutation: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	r.logger.Sugar().Infow("Redis registry store closed")
	return nil
}

func (r *RedisStore) HealthCheck() error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) checkOpen() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

func operatorKey(operator common.Address) string {
	return keyPrefixOperator + operator.Hex()
}

func validatorKey(blsPubKeyHash common.Hash) string {
	return keyPrefixValidator + blsPubKeyHash.Hex()
}

func replayKey(signer [32]byte, salt [32]byte) string {
	return keyPrefixReplay + persistence.ReplayKey(signer, salt)
}

func eventKey(seq uint64) string {
	return fmt.Sprintf("%s%020d", keyPrefixEvent, seq)
}

func sortStrings(keys []string) []string {
	sort.Strings(keys)
	return keys
}
