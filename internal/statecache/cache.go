// Package statecache implements the Local State Cache (§4.15): an
// in-process LRU fronting Router DEX Table classification, plus an optional
// SQLite-backed fixture store used only by the offline Historical Replay
// tool. Parsed ABI documents are cached by the abiregistry package, not
// here. This is not the live service's trade
// state, which stays process-memory-only; it only memoizes read-mostly
// lookups and persists replay fixtures across runs.
//
// Adapted from the teacher's internal/storage/cache.go (SQLite WAL
// account/storage cache), repurposed from per-block EVM state to
// per-router classification caching and replay fixtures.
package statecache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/copytrade/router-mirror/internal/dextable"
	"github.com/copytrade/router-mirror/internal/domain"
)

// routerKey identifies one (chain, address) DEX-table lookup.
type routerKey struct {
	chain   domain.Chain
	address common.Address
}

// Classifier memoizes dextable.Table.Classify results behind an LRU, so a
// replay run or a bursty HTTP hook re-observing the same router repeatedly
// does not repeat the table's map lookup path on every hash.
type Classifier struct {
	table *dextable.Table
	cache *lru.Cache[routerKey, domain.DexKind]
}

// NewClassifier wraps table with an LRU of the given size.
func NewClassifier(table *dextable.Table, size int) (*Classifier, error) {
	if size < 1 {
		size = 1
	}
	cache, err := lru.New[routerKey, domain.DexKind](size)
	if err != nil {
		return nil, fmt.Errorf("new classifier cache: %w", err)
	}
	return &Classifier{table: table, cache: cache}, nil
}

// Classify returns the cached DexKind for (chain, router) if present,
// otherwise delegates to the underlying Table and caches the result.
func (c *Classifier) Classify(chain domain.Chain, router common.Address) (domain.DexKind, error) {
	key := routerKey{chain: chain, address: router}
	if kind, ok := c.cache.Get(key); ok {
		return kind, nil
	}
	kind, err := c.table.Classify(chain, router)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, kind)
	return kind, nil
}

// FixtureDB is the SQLite-backed fixture store used only by cmd/replay to
// persist ingested historical router transactions across runs (§4.16). The
// live Dispatcher path never opens one.
type FixtureDB struct {
	db *sql.DB
}

const fixtureSchema = `
CREATE TABLE IF NOT EXISTS fixtures (
	hash        TEXT PRIMARY KEY,
	chain       TEXT NOT NULL,
	raw_tx      BLOB NOT NULL,
	receipt_logs BLOB NOT NULL,
	status      INTEGER NOT NULL
);
`

// OpenFixtureDB opens (creating if needed) a SQLite database at dbPath for
// recording/replaying fixtures.
func OpenFixtureDB(dbPath string) (*FixtureDB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create fixture db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open fixture db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(fixtureSchema); err != nil {
		return nil, fmt.Errorf("init fixture schema: %w", err)
	}
	return &FixtureDB{db: db}, nil
}

// Close releases the underlying connection.
func (f *FixtureDB) Close() error { return f.db.Close() }

// PutFixture records one historical transaction for later replay.
func (f *FixtureDB) PutFixture(hash common.Hash, chain domain.Chain, rawTx, receiptLogs []byte, status uint64) error {
	_, err := f.db.Exec(
		"INSERT OR REPLACE INTO fixtures (hash, chain, raw_tx, receipt_logs, status) VALUES (?, ?, ?, ?, ?)",
		hash.Hex(), string(chain), rawTx, receiptLogs, status,
	)
	return err
}

// Fixture is one recorded historical transaction.
type Fixture struct {
	Hash        common.Hash
	Chain       domain.Chain
	RawTx       []byte
	ReceiptLogs []byte
	Status      uint64
}

// AllFixtures loads every recorded fixture, in insertion order.
func (f *FixtureDB) AllFixtures() ([]Fixture, error) {
	rows, err := f.db.Query("SELECT hash, chain, raw_tx, receipt_logs, status FROM fixtures")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fixture
	for rows.Next() {
		var hashHex, chain string
		var rawTx, receiptLogs []byte
		var status uint64
		if err := rows.Scan(&hashHex, &chain, &rawTx, &receiptLogs, &status); err != nil {
			return nil, err
		}
		out = append(out, Fixture{
			Hash:        common.HexToHash(hashHex),
			Chain:       domain.Chain(chain),
			RawTx:       rawTx,
			ReceiptLogs: receiptLogs,
			Status:      status,
		})
	}
	return out, rows.Err()
}
