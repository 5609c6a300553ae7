// Package replay implements the offline Historical Replay / Backtest tool
// (§4.16): it loads previously observed router transactions from a Parquet
// file or a SQLite fixture DB and runs them through the same
// Extractor -> Planner pipeline the live Dispatcher uses, reporting the
// resulting plans for comparison against recorded expectations.
//
// This supplements a feature present in the original Rust source
// (mempool/parquet ingestion, cmd/backtest + cmd/ingest-mempool in the
// teacher) that the distilled specification dropped; it is adapted here
// from "simulate historical arbitrage" to "replay historical router swaps
// through the copy-trade pipeline", grounded on the teacher's
// internal/backtest/{parser.go,mempool.go} row-parsing shape.
package replay

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/statecache"
)

// ParquetRow mirrors the historical-swap export shape the teacher's
// mempool-dumpster ingestion used, narrowed to the fields the replay tool
// needs: a plain, untagged struct (matching the teacher's own ParquetRow,
// which parquet-go infers a schema from by reflection).
type ParquetRow struct {
	Hash            string
	Chain           string
	RawTx           string
	ReceiptLogsJSON string
	Status          int64
}

// logJSON is the wire shape domain.Log fixtures are serialized to/from,
// since common.Hash/[]byte do not round-trip through encoding/json directly
// in the form replay fixtures are stored.
type logJSON struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string    `json:"data"`
}

// Record is one historical transaction ready to feed into the pipeline's
// Extractor, paired with the chain it was observed on.
type Record struct {
	Hash  common.Hash
	Chain domain.Chain
	Ready domain.ReadyTransaction
}

// LoadParquet reads every row of path and parses it into a Record.
// Rows that fail to parse are skipped and counted in skipped.
func LoadParquet(path string) (records []Record, skipped int, err error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open parquet file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ParquetRow), 4)
	if err != nil {
		return nil, 0, fmt.Errorf("new parquet reader: %w", err)
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	rawRows, err := pr.ReadByNumber(numRows)
	if err != nil {
		return nil, 0, fmt.Errorf("read parquet rows: %w", err)
	}

	for _, raw := range rawRows {
		row, ok := raw.(ParquetRow)
		if !ok {
			if p, ok2 := raw.(*ParquetRow); ok2 {
				row = *p
			} else {
				skipped++
				continue
			}
		}
		rec, err := parseRow(row)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, *rec)
	}
	return records, skipped, nil
}

func parseRow(row ParquetRow) (*Record, error) {
	rawTx, err := hex.DecodeString(strings.TrimPrefix(row.RawTx, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode raw_tx hex: %w", err)
	}

	var tx types.Transaction
	if err := rlp.DecodeBytes(rawTx, &tx); err != nil {
		return nil, fmt.Errorf("rlp decode tx: %w", err)
	}

	signer := types.LatestSignerForChainID(tx.ChainId())
	from, err := types.Sender(signer, &tx)
	if err != nil {
		return nil, fmt.Errorf("recover sender: %w", err)
	}

	logs, err := decodeLogs(row.ReceiptLogsJSON)
	if err != nil {
		return nil, fmt.Errorf("decode receipt logs: %w", err)
	}

	hash := common.HexToHash(row.Hash)
	to := tx.To()

	return &Record{
		Hash:  hash,
		Chain: domain.Chain(row.Chain),
		Ready: domain.ReadyTransaction{
			Hash: hash,
			Body: domain.Body{
				Hash:     hash,
				To:       to,
				From:     from,
				Value:    tx.Value(),
				Input:    tx.Data(),
				Nonce:    tx.Nonce(),
				GasPrice: tx.GasPrice(),
			},
			Receipt: domain.Receipt{
				Status: uint64(row.Status),
				Logs:   logs,
			},
		},
	}, nil
}

// LoadFixtureDB converts every fixture in db into a Record, using the same
// RLP/JSON decoding path as LoadParquet.
func LoadFixtureDB(db *statecache.FixtureDB) ([]Record, int, error) {
	fixtures, err := db.AllFixtures()
	if err != nil {
		return nil, 0, fmt.Errorf("load fixtures: %w", err)
	}

	var records []Record
	skipped := 0
	for _, fx := range fixtures {
		var tx types.Transaction
		if err := rlp.DecodeBytes(fx.RawTx, &tx); err != nil {
			skipped++
			continue
		}
		signer := types.LatestSignerForChainID(tx.ChainId())
		from, err := types.Sender(signer, &tx)
		if err != nil {
			skipped++
			continue
		}
		logs, err := decodeLogs(string(fx.ReceiptLogs))
		if err != nil {
			skipped++
			continue
		}
		records = append(records, Record{
			Hash:  fx.Hash,
			Chain: fx.Chain,
			Ready: domain.ReadyTransaction{
				Hash: fx.Hash,
				Body: domain.Body{
					Hash:     fx.Hash,
					To:       tx.To(),
					From:     from,
					Value:    tx.Value(),
					Input:    tx.Data(),
					Nonce:    tx.Nonce(),
					GasPrice: tx.GasPrice(),
				},
				Receipt: domain.Receipt{Status: fx.Status, Logs: logs},
			},
		})
	}
	return records, skipped, nil
}

func decodeLogs(blob string) ([]domain.Log, error) {
	if blob == "" {
		return nil, nil
	}
	var raw []logJSON
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Log, 0, len(raw))
	for _, l := range raw {
		topics := make([]common.Hash, 0, len(l.Topics))
		for _, t := range l.Topics {
			topics = append(topics, common.HexToHash(t))
		}
		out = append(out, domain.Log{
			Address: common.HexToAddress(l.Address),
			Topics:  topics,
			Data:    common.FromHex(l.Data),
		})
	}
	return out, nil
}
