// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package operators

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/streams/api/restutil"
	"github.com/vechain/streams/api/types"
	"github.com/vechain/streams/engine"
	"github.com/vechain/streams/thor"
)

type SetRequest struct {
	Owner      thor.Address `json:"owner"`
	Operator   thor.Address `json:"operator"`
	Authorized bool         `json:"authorized"`
}

type Operators struct {
	eng         *engine.Engine
	allowWrites bool
}

func New(eng *engine.Engine, allowWrites bool) *Operators {
	return &Operators{
		eng,
		allowWrites,
	}
}

func (o *Operators) handleList(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.Address(req, "owner")
	if err != nil {
		return err
	}
	list, err := o.eng.Operators(owner)
	if err != nil {
		return err
	}
	if list == nil {
		list = []thor.Address{}
	}
	return restutil.WriteJSON(w, list)
}

func (o *Operators) handleSet(w http.ResponseWriter, req *http.Request) error {
	if !o.allowWrites {
		return restutil.Forbidden(errors.New("writes disabled"))
	}
	var body SetRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := o.eng.SetOperator(body.Owner, body.Operator, body.Authorized)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &types.CallResult{Receipt: types.ConvertReceipt(receipt)})
}

func (o *Operators) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /operators").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleSet))
	sub.Path("/{owner}").
		Methods(http.MethodGet).
		Name("GET /operators/{owner}").
		HandlerFunc(restutil.WrapHandlerFunc(o.handleList))
}
