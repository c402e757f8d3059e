// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/lockstake/api"
	"github.com/vechain/lockstake/authority"
	"github.com/vechain/lockstake/co"
	"github.com/vechain/lockstake/kv"
	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/metrics"
	"github.com/vechain/lockstake/stake"
	"github.com/vechain/lockstake/stake/reverts"
	"github.com/vechain/lockstake/storage"
	"github.com/vechain/lockstake/token"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	if version == "" {
		return "dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "lockstake",
		Usage:     "time-locked staking ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			memFlag,
			adminFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			onDemandFlag,
			workBudgetFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	admin, err := resolveAdmin(ctx)
	if err != nil {
		return err
	}

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing database..."); db.Close() }()

	// ledger state lives under its own key prefix, leaving the rest of
	// the database free for future namespaces
	storeCtx := storage.NewContext(kv.Bucket("ls-").NewStore(db), 8192)
	tokens := token.New(storeCtx)
	auth := authority.New(storeCtx)
	ledger := stake.New(storeCtx, tokens, auth, lockstake.CustodyAddress, stake.Options{})

	now := uint64(time.Now().Unix())
	if err := ledger.Initialize(admin, now); err != nil {
		return errors.WithMessage(err, "initialize ledger")
	}
	if ctx.Bool(memFlag.Name) {
		devSupply := new(big.Int).Mul(big.NewInt(1_000_000_000), big.NewInt(100_000_000))
		if err := tokens.InitializeSupply(admin, devSupply); err != nil {
			return errors.WithMessage(err, "seed dev supply")
		}
		logger.Info("seeded dev token supply", "holder", admin, "amount", devSupply)
	}

	handler := api.New(ledger, tokens, api.Options{
		AllowedOrigins: splitCommaList(ctx.String(apiCorsFlag.Name)),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
		LogRequests:    ctx.Bool(enableAPILogsFlag.Name),
	})
	server := &http.Server{Addr: ctx.String(apiAddrFlag.Name), Handler: handler}

	quit, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var goes co.Goes
	goes.Go(func() {
		logger.Info("API server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server failed", "err", err)
		}
	})
	if !ctx.Bool(onDemandFlag.Name) {
		goes.Go(func() {
			runTicker(quit, ledger, admin, ctx.Uint64(workBudgetFlag.Name))
		})
	}

	<-quit.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API server shutdown", "err", err)
	}
	goes.Wait()
	logger.Info("exited")
	return nil
}

// runTicker drives the accrual engine: it probes once a minute and, when
// a cycle is due, keeps ticking until the sweep completes.
func runTicker(quit context.Context, ledger *stake.Ledger, caller lockstake.Address, workBudget uint64) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-quit.Done():
			return
		case <-ticker.C:
			distributed := new(big.Int)
			for {
				result, err := ledger.Tick(caller, uint64(time.Now().Unix()), workBudget)
				if err != nil {
					if !errors.Is(err, reverts.ErrCycleNotDue) {
						logger.Warn("tick failed", "err", err)
					}
					break
				}
				distributed.Add(distributed, result.Distributed)
				if result.Done {
					logger.Info("cycle completed", "distributed", distributed, "visited", result.Visited)
					break
				}
			}
		}
	}
}

func resolveAdmin(ctx *cli.Context) (lockstake.Address, error) {
	raw := ctx.String(adminFlag.Name)
	if raw == "" {
		return lockstake.Address{}, errors.New("the --admin flag is required")
	}
	admin, err := lockstake.ParseAddress(raw)
	if err != nil {
		return lockstake.Address{}, errors.WithMessage(err, "--admin")
	}
	return *admin, nil
}

func openDB(ctx *cli.Context) (*kv.LevelDB, error) {
	if ctx.Bool(memFlag.Name) {
		return kv.NewMem()
	}
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, errors.New("no data directory; set --data-dir or use --mem")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.WithMessage(err, "create data directory")
	}
	return kv.New(filepath.Join(dir, "ledger.db"), kv.Options{})
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
