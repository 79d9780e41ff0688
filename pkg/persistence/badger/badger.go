package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Key prefixes for namespacing
const (
	keyPrefixOperator    = "operator:"
	keyPrefixValidator   = "validator:"
	keyPrefixReplay      = "replay:"
	keyPrefixEvent       = "event:"
	keyEventSequence     = "metadata:event_seq"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// BadgerStore is a production persistence implementation using Badger.
// Provides durable, disk-based storage with transactional commits.
type BadgerStore struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

var _ persistence.IRegistryStore = (*BadgerStore)(nil)

// NewBadgerStore opens a Badger-backed registry store at the given path with
// SyncWrites enabled for durability. A background goroutine runs value-log
// garbage collection until Close.
func NewBadgerStore(dataPath string, logger *zap.Logger) (*BadgerStore, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true // fsync on every write
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	bs := &BadgerStore{
		db:     db,
		logger: logger,
	}

	if err := bs.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bs.gcCancel = cancel
	bs.gcWg.Add(1)
	go bs.runGC(ctx)

	logger.Sugar().Infow("Badger registry store initialized", "path", absPath)

	return bs, nil
}

// initSchema initializes or validates the schema version
func (b *BadgerStore) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if string(val) != currentSchemaVersion {
				return fmt.Errorf("unsupported schema version %q, expected %q", string(val), currentSchemaVersion)
			}
			return nil
		})
	})
}

// runGC runs periodic value-log garbage collection
func (b *BadgerStore) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Badger recommends rerunning while GC makes progress
			for {
				if err := b.db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
		}
	}
}

func (b *BadgerStore) GetOperator(operator common.Address) (*types.OperatorRecord, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	var record *types.OperatorRecord
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(operatorKey(operator))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = persistence.UnmarshalOperatorRecord(val)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get operator %s: %w", operator.Hex(), err)
	}
	return record, nil
}

func (b *BadgerStore) ListOperators() ([]*types.OperatorRecord, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	records := make([]*types.OperatorRecord, 0)
	err := b.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefixOperator)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				record, err := persistence.UnmarshalOperatorRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	return records, nil
}

func (b *BadgerStore) GetValidator(blsPubKeyHash common.Hash) (*types.ValidatorRecord, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	var record *types.ValidatorRecord
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(validatorKey(blsPubKeyHash))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = persistence.UnmarshalValidatorRecord(val)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get validator %s: %w", blsPubKeyHash.Hex(), err)
	}
	return record, nil
}

func (b *BadgerStore) ListValidators() ([]*types.ValidatorRecord, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	records := make([]*types.ValidatorRecord, 0)
	err := b.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefixValidator)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				record, err := persistence.UnmarshalValidatorRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list validators: %w", err)
	}
	return records, nil
}

func (b *BadgerStore) HasReplayEntry(signer [32]byte, salt [32]byte) (bool, error) {
	if err := b.checkOpen(); err != nil {
		return false, err
	}

	exists := false
	err := b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(replayKey(signer, salt))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to check replay entry: %w", err)
	}
	return exists, nil
}

func (b *BadgerStore) ListEvents() ([]*types.RegistryEvent, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	events := make([]*types.RegistryEvent, 0)
	err := b.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		// Keys are zero-padded by sequence, so prefix iteration yields
		// ascending order.
		prefix := []byte(keyPrefixEvent)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				event, err := persistence.UnmarshalRegistryEvent(val)
				if err != nil {
					return err
				}
				events = append(events, event)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (b *BadgerStore) CommitOperatorRegistration(record *types.OperatorRecord, entry *persistence.ReplayEntry, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}
	if err := b.checkOpen(); err != nil {
		return err
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		if err := b.writeReplayEntry(txn, entry); err != nil {
			return err
		}
		data, err := persistence.MarshalOperatorRecord(record)
		if err != nil {
			return err
		}
		if err := txn.Set(operatorKey(record.Operator), data); err != nil {
			return err
		}
		return b.appendEvent(txn, event)
	})
}

func (b *BadgerStore) CommitOperatorDeregistration(record *types.OperatorRecord, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}
	if err := b.checkOpen(); err != nil {
		return err
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		data, err := persistence.MarshalOperatorRecord(record)
		if err != nil {
			return err
		}
		if err := txn.Set(operatorKey(record.Operator), data); err != nil {
			return err
		}
		return b.appendEvent(txn, event)
	})
}

func (b *BadgerStore) CommitValidatorRegistration(record *types.ValidatorRecord, entry *persistence.ReplayEntry, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}
	if err := b.checkOpen(); err != nil {
		return err
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		if err := b.writeReplayEntry(txn, entry); err != nil {
			return err
		}
		data, err := persistence.MarshalValidatorRecord(record)
		if err != nil {
			return err
		}
		if err := txn.Set(validatorKey(record.BLSPubKeyHash), data); err != nil {
			return err
		}
		return b.appendEvent(txn, event)
	})
}

func (b *BadgerStore) CommitValidatorRevocation(record *types.ValidatorRecord, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}
	if err := b.checkOpen(); err != nil {
		return err
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		data, err := persistence.MarshalValidatorRecord(record)
		if err != nil {
			return err
		}
		if err := txn.Set(validatorKey(record.BLSPubKeyHash), data); err != nil {
			return err
		}
		return b.appendEvent(txn, event)
	})
}

// writeReplayEntry writes entry inside txn, failing if the key exists.
// A nil entry is a no-op.
func (b *BadgerStore) writeReplayEntry(txn *badgerdb.Txn, entry *persistence.ReplayEntry) error {
	if entry == nil {
		return nil
	}

	key := replayKey(entry.Signer, entry.Salt)
	_, err := txn.Get(key)
	if err == nil {
		return persistence.ErrReplayEntryExists
	}
	if err != badgerdb.ErrKeyNotFound {
		return err
	}

	data, err := persistence.MarshalReplayEntry(entry)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// appendEvent assigns the next sequence number and writes the event,
// all inside txn.
func (b *BadgerStore) appendEvent(txn *badgerdb.Txn, event *types.RegistryEvent) error {
	seq := uint64(0)
	item, err := txn.Get([]byte(keyEventSequence))
	if err == nil {
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt event sequence value")
			}
			seq = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return err
		}
	} else if err != badgerdb.ErrKeyNotFound {
		return err
	}

	seq++
	event.Sequence = seq

	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seq)
	if err := txn.Set([]byte(keyEventSequence), seqBytes); err != nil {
		return err
	}

	data, err := persistence.MarshalRegistryEvent(event)
	if err != nil {
		return err
	}
	return txn.Set(eventKey(seq), data)
}

func (b *BadgerStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.gcCancel()
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	b.logger.Sugar().Infow("Badger registry store closed")
	return nil
}

func (b *BadgerStore) HealthCheck() error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		return err
	})
}

func (b *BadgerStore) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

func operatorKey(operator common.Address) []byte {
	return []byte(keyPrefixOperator + operator.Hex())
}

func validatorKey(blsPubKeyHash common.Hash) []byte {
	return []byte(keyPrefixValidator + blsPubKeyHash.Hex())
}

func replayKey(signer [32]byte, salt [32]byte) []byte {
	return []byte(keyPrefixReplay + persistence.ReplayKey(signer, salt))
}

func eventKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefixEvent, seq))
}
