package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/copytrade/router-mirror/internal/abiregistry"
	"github.com/copytrade/router-mirror/internal/dextable"
	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/planner"
	"github.com/copytrade/router-mirror/internal/replay"
	"github.com/copytrade/router-mirror/internal/statecache"
	"github.com/copytrade/router-mirror/internal/trade"
)

func main() {
	_ = godotenv.Load("../../.env")

	var (
		parquetFile = flag.String("parquet", "", "path to historical swaps Parquet file")
		fixtureDB   = flag.String("db", "", "path to SQLite fixture database (alternative to -parquet)")
		routerHex   = flag.String("router", "", "router contract address to classify as PancakeSwap")
		chain       = flag.String("chain", string(domain.ChainEthMainnet), "chain the fixtures were recorded on")
		amountIn    = flag.String("amount-in", "1000000000000000000", "test amount_in (wei)")
		amountOut   = flag.String("amount-out-min", "0", "test amount_out_minimum (wei)")
		recipient   = flag.String("recipient", "", "recipient address for replayed plans")
	)
	flag.Parse()

	if *parquetFile == "" && *fixtureDB == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -parquet <file> | -db <path> -router <address> -recipient <address>")
		os.Exit(1)
	}
	if *routerHex == "" || *recipient == "" {
		fmt.Fprintln(os.Stderr, "both -router and -recipient are required")
		os.Exit(1)
	}

	var records []replay.Record
	var skipped int
	var err error
	switch {
	case *parquetFile != "":
		records, skipped, err = replay.LoadParquet(*parquetFile)
	default:
		var db *statecache.FixtureDB
		db, err = statecache.OpenFixtureDB(*fixtureDB)
		if err == nil {
			defer db.Close()
			records, skipped, err = replay.LoadFixtureDB(db)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixtures: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("loaded %d records (%d skipped)\n", len(records), skipped)

	routerReg, err := abiregistry.NewRouterRegistry(64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build router registry: %v\n", err)
		os.Exit(1)
	}
	erc20Reg, err := abiregistry.NewERC20Registry(64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build erc20 registry: %v\n", err)
		os.Exit(1)
	}

	table := dextable.New(dextable.Row{
		Chain:   domain.Chain(*chain),
		Address: common.HexToAddress(*routerHex),
		Kind:    domain.PancakeSwap,
	})
	classifier, err := statecache.NewClassifier(table, 256)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build classifier: %v\n", err)
		os.Exit(1)
	}

	extractor := trade.New(routerReg, erc20Reg)
	pl := planner.New(routerReg)

	amountInU, ok := new(big.Int).SetString(*amountIn, 10)
	if !ok {
		fmt.Fprintln(os.Stderr, "invalid -amount-in")
		os.Exit(1)
	}
	amountOutU, ok := new(big.Int).SetString(*amountOut, 10)
	if !ok {
		fmt.Fprintln(os.Stderr, "invalid -amount-out-min")
		os.Exit(1)
	}
	amountInU256, err := domain.NewU256FromBig(amountInU)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amount-in: %v\n", err)
		os.Exit(1)
	}
	amountOutU256, err := domain.NewU256FromBig(amountOutU)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amount-out-min: %v\n", err)
		os.Exit(1)
	}

	runner := replay.NewRunner(classifier, extractor, pl, amountInU256, amountOutU256, common.HexToAddress(*recipient))

	outcomes := runner.Run(records)

	succeeded := 0
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("%s FAIL %v\n", o.Hash.Hex(), o.Err)
			continue
		}
		succeeded++
		fmt.Printf("%s OK target=%s calldata_len=%d\n", o.Hash.Hex(), o.Target.Hex(), len(o.Calldata))
	}
	fmt.Printf("\nreplayed %d records: %d ok, %d failed\n", len(outcomes), succeeded, len(outcomes)-succeeded)
}
