// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/api/restutil"
	"github.com/vechain/streams/api/types"
	"github.com/vechain/streams/builtin/token"
	"github.com/vechain/streams/engine"
	"github.com/vechain/streams/runtime"
	"github.com/vechain/streams/thor"
)

type Token struct {
	Address     thor.Address          `json:"address"`
	Symbol      string                `json:"symbol"`
	Minter      thor.Address          `json:"minter"`
	FeeBps      uint64                `json:"feeBps"`
	Tracker     *thor.Address         `json:"tracker"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

type DeployRequest struct {
	Caller  thor.Address `json:"caller"`
	Symbol  string       `json:"symbol"`
	Minter  thor.Address `json:"minter"`
	FeeBps  uint64       `json:"feeBps"`
	Tracked bool         `json:"tracked"`
}

// CallRequest is the body of mint, approve and transfer. To is the spender for approve.
type CallRequest struct {
	Caller thor.Address          `json:"caller"`
	To     thor.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Tokens struct {
	eng         *engine.Engine
	allowWrites bool
}

func New(eng *engine.Engine, allowWrites bool) *Tokens {
	return &Tokens{
		eng,
		allowWrites,
	}
}

func notFound(err error) error {
	if errors.Is(err, token.ErrNotDeployed) {
		return restutil.NotFound(err)
	}
	return err
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.Address(req, "address")
	if err != nil {
		return err
	}
	info, err := t.eng.Token(addr)
	if err != nil {
		return notFound(err)
	}
	out := &Token{
		Address:     info.Address,
		Symbol:      info.Symbol,
		Minter:      info.Minter,
		FeeBps:      info.FeeBps,
		TotalSupply: restutil.JSONAmount(info.TotalSupply),
	}
	if !info.Tracker.IsZero() {
		out.Tracker = &info.Tracker
	}
	return restutil.WriteJSON(w, out)
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.Address(req, "address")
	if err != nil {
		return err
	}
	owner, err := restutil.Address(req, "owner")
	if err != nil {
		return err
	}
	balance, err := t.eng.TokenBalance(addr, owner)
	if err != nil {
		return notFound(err)
	}
	return restutil.WriteJSON(w, restutil.M{"balance": restutil.JSONAmount(balance)})
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.Address(req, "address")
	if err != nil {
		return err
	}
	owner, err := restutil.Address(req, "owner")
	if err != nil {
		return err
	}
	spender, err := restutil.Address(req, "spender")
	if err != nil {
		return err
	}
	allowance, err := t.eng.Allowance(addr, owner, spender)
	if err != nil {
		return notFound(err)
	}
	return restutil.WriteJSON(w, restutil.M{"allowance": restutil.JSONAmount(allowance)})
}

func (t *Tokens) handleDeploy(w http.ResponseWriter, req *http.Request) error {
	if !t.allowWrites {
		return restutil.Forbidden(errors.New("writes disabled"))
	}
	var body DeployRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	addr, receipt, err := t.eng.DeployToken(body.Caller, body.Symbol, body.Minter, body.FeeBps, body.Tracked)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &types.CallResult{
		Receipt: types.ConvertReceipt(receipt),
		Address: &addr,
	})
}

// call runs one of the token mutations sharing the (caller, token, to, amount) shape.
func (t *Tokens) call(fn func(caller, tokenAddr, to thor.Address, amount *uint256.Int) (*runtime.Receipt, error)) restutil.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		if !t.allowWrites {
			return restutil.Forbidden(errors.New("writes disabled"))
		}
		addr, err := restutil.Address(req, "address")
		if err != nil {
			return err
		}
		var body CallRequest
		if err := restutil.ParseJSON(req.Body, &body); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "body"))
		}
		amount, err := restutil.Amount(body.Amount)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "amount"))
		}
		receipt, err := fn(body.Caller, addr, body.To, amount)
		if err != nil {
			return notFound(err)
		}
		return restutil.WriteJSON(w, &types.CallResult{Receipt: types.ConvertReceipt(receipt)})
	}
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	addr := "/{address:0x[0-9a-fA-F]{40}}"

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /tokens").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleDeploy))
	sub.Path(addr).
		Methods(http.MethodGet).
		Name("GET /tokens/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetToken))
	sub.Path(addr + "/balances/{owner}").
		Methods(http.MethodGet).
		Name("GET /tokens/{address}/balances/{owner}").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetBalance))
	sub.Path(addr + "/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("GET /tokens/{address}/allowances/{owner}/{spender}").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path(addr + "/mint").
		Methods(http.MethodPost).
		Name("POST /tokens/{address}/mint").
		HandlerFunc(restutil.WrapHandlerFunc(t.call(t.eng.Mint)))
	sub.Path(addr + "/approve").
		Methods(http.MethodPost).
		Name("POST /tokens/{address}/approve").
		HandlerFunc(restutil.WrapHandlerFunc(t.call(t.eng.Approve)))
	sub.Path(addr + "/transfer").
		Methods(http.MethodPost).
		Name("POST /tokens/{address}/transfer").
		HandlerFunc(restutil.WrapHandlerFunc(t.call(t.eng.Transfer)))
}
