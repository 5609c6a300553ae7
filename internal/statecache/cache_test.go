package statecache

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/dextable"
	"github.com/copytrade/router-mirror/internal/domain"
)

func TestClassifierDelegatesAndCaches(t *testing.T) {
	router := common.HexToAddress("0x1111111111111111111111111111111111111111")
	table := dextable.New(dextable.Row{Chain: domain.ChainEthMainnet, Address: router, Kind: domain.PancakeSwap})

	c, err := NewClassifier(table, 4)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	kind, err := c.Classify(domain.ChainEthMainnet, router)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if kind != domain.PancakeSwap {
		t.Errorf("kind = %v, want %v", kind, domain.PancakeSwap)
	}

	// second lookup should hit the LRU and return the same result.
	kind2, err := c.Classify(domain.ChainEthMainnet, router)
	if err != nil {
		t.Fatalf("Classify (cached): %v", err)
	}
	if kind2 != domain.PancakeSwap {
		t.Errorf("cached kind = %v, want %v", kind2, domain.PancakeSwap)
	}
}

func TestClassifierPropagatesUnknownRouter(t *testing.T) {
	table := dextable.New()
	c, err := NewClassifier(table, 4)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	_, err = c.Classify(domain.ChainEthMainnet, common.HexToAddress("0x1111111111111111111111111111111111111111"))
	if err == nil {
		t.Fatal("expected error for an unregistered router")
	}
}

func TestClassifierClampsNonPositiveSize(t *testing.T) {
	if _, err := NewClassifier(dextable.New(), 0); err != nil {
		t.Fatalf("NewClassifier with size 0 should clamp to 1, got error: %v", err)
	}
}

func TestFixtureDBRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixtures.db")
	db, err := OpenFixtureDB(dbPath)
	if err != nil {
		t.Fatalf("OpenFixtureDB: %v", err)
	}
	defer db.Close()

	hash := common.HexToHash("0xdeadbeef")
	rawTx := []byte{1, 2, 3, 4}
	logs := []byte(`[]`)

	if err := db.PutFixture(hash, domain.ChainEthMainnet, rawTx, logs, 1); err != nil {
		t.Fatalf("PutFixture: %v", err)
	}

	fixtures, err := db.AllFixtures()
	if err != nil {
		t.Fatalf("AllFixtures: %v", err)
	}
	if len(fixtures) != 1 {
		t.Fatalf("got %d fixtures, want 1", len(fixtures))
	}
	got := fixtures[0]
	if got.Hash != hash {
		t.Errorf("Hash = %v, want %v", got.Hash, hash)
	}
	if got.Chain != domain.ChainEthMainnet {
		t.Errorf("Chain = %v, want %v", got.Chain, domain.ChainEthMainnet)
	}
	if got.Status != 1 {
		t.Errorf("Status = %d, want 1", got.Status)
	}
	if string(got.RawTx) != string(rawTx) {
		t.Errorf("RawTx = %v, want %v", got.RawTx, rawTx)
	}
}

func TestFixtureDBPutFixtureUpserts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixtures.db")
	db, err := OpenFixtureDB(dbPath)
	if err != nil {
		t.Fatalf("OpenFixtureDB: %v", err)
	}
	defer db.Close()

	hash := common.HexToHash("0xabc123")
	if err := db.PutFixture(hash, domain.ChainEthMainnet, []byte{1}, []byte(`[]`), 0); err != nil {
		t.Fatalf("PutFixture (1): %v", err)
	}
	if err := db.PutFixture(hash, domain.ChainEthMainnet, []byte{2}, []byte(`[]`), 1); err != nil {
		t.Fatalf("PutFixture (2): %v", err)
	}

	fixtures, err := db.AllFixtures()
	if err != nil {
		t.Fatalf("AllFixtures: %v", err)
	}
	if len(fixtures) != 1 {
		t.Fatalf("got %d fixtures after upsert, want 1", len(fixtures))
	}
	if fixtures[0].Status != 1 {
		t.Errorf("Status after upsert = %d, want 1", fixtures[0].Status)
	}
}
