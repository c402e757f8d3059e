// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakes exposes the staking ledger over HTTP: per-account
// positions, global totals, the active configuration and a tick endpoint
// for driving the accrual engine.
package stakes

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/lockstake"
	"github.com/vechain/lockstake/stake"
	"github.com/vechain/lockstake/stake/reverts"
	"github.com/vechain/lockstake/token"
)

const defaultWorkBudget = 10_000

type Stakes struct {
	ledger *stake.Ledger
	tokens *token.Ledger
}

func New(ledger *stake.Ledger, tokens *token.Ledger) *Stakes {
	return &Stakes{ledger: ledger, tokens: tokens}
}

func (s *Stakes) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := lockstake.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	list, err := s.ledger.Positions(*addr)
	if err != nil {
		return err
	}
	out := make([]*Position, len(list))
	for i, p := range list {
		out[i] = convertPosition(p)
	}
	return utils.WriteJSON(w, out)
}

func (s *Stakes) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	accounts, err := s.ledger.AccountCount()
	if err != nil {
		return err
	}
	raw, weighted, err := s.ledger.Totals()
	if err != nil {
		return err
	}
	distributed, err := s.tokens.TotalMinted()
	if err != nil {
		return err
	}
	burned, err := s.tokens.TotalBurned()
	if err != nil {
		return err
	}
	drift, err := s.ledger.Drift()
	if err != nil {
		return err
	}
	inProgress, err := s.ledger.CycleInProgress()
	if err != nil {
		return err
	}
	last, err := s.ledger.LastCycleTime()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Totals{
		Accounts:        accounts,
		TotalStaked:     (*math.HexOrDecimal256)(raw),
		TotalWeighted:   (*math.HexOrDecimal256)(weighted),
		Distributed:     (*math.HexOrDecimal256)(distributed),
		Burned:          (*math.HexOrDecimal256)(burned),
		Drift:           drift.String(),
		CycleInProgress: inProgress,
		LastCycleTime:   last,
	})
}

func (s *Stakes) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	table, err := s.ledger.TierTable()
	if err != nil {
		return err
	}
	budget, err := s.ledger.TargetBudget()
	if err != nil {
		return err
	}
	genesis, err := s.ledger.GenesisTime()
	if err != nil {
		return err
	}
	minStakes := make([]*math.HexOrDecimal256, len(table.MinStakes))
	for i, min := range table.MinStakes {
		minStakes[i] = (*math.HexOrDecimal256)(min)
	}
	return utils.WriteJSON(w, &Config{
		Multipliers:  table.Multipliers,
		LockCycles:   table.LockCycles,
		MinStakes:    minStakes,
		TargetBudget: (*math.HexOrDecimal256)(budget),
		GenesisTime:  genesis,
	})
}

func (s *Stakes) handleTick(w http.ResponseWriter, req *http.Request) error {
	var body TickRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := lockstake.ParseAddress(body.Caller)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "caller"))
	}
	now := body.Now
	if now == 0 {
		now = uint64(time.Now().Unix())
	}
	workBudget := body.WorkBudget
	if workBudget == 0 {
		workBudget = defaultWorkBudget
	}

	result, err := s.ledger.Tick(*caller, now, workBudget)
	if err != nil {
		if errors.Is(err, reverts.ErrUnauthorized) {
			return utils.Forbidden(err)
		}
		if reverts.IsRevertErr(err) {
			return utils.BadRequest(err)
		}
		return err
	}
	resp := &TickResponse{
		Done:        result.Done,
		Visited:     result.Visited,
		Distributed: (*math.HexOrDecimal256)(result.Distributed),
	}
	if result.Drift != nil {
		resp.Drift = result.Drift.String()
	}
	return utils.WriteJSON(w, resp)
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/totals").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotals))
	sub.Path("/config").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetConfig))
	sub.Path("/tick").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(s.handleTick))
	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetAccount))
}
