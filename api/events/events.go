// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/streams/api/restutil"
	"github.com/vechain/streams/eventdb"
)

// Source answers history queries.
type Source interface {
	FilterEvents(ctx context.Context, filter *eventdb.Filter) ([]*eventdb.Event, error)
}

type Events struct {
	src   Source
	limit uint64
}

func New(src Source, limit uint64) *Events {
	return &Events{
		src,
		limit,
	}
}

func (e *Events) filter(ctx context.Context, f *Filter, limit uint64) ([]*FilteredEvent, error) {
	events, err := e.src.FilterEvents(ctx, f.convert(limit))
	if err != nil {
		return nil, err
	}
	fes := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		fes[i] = ConvertEvent(ev)
	}
	return fes, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter Filter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := filter.validate(e.limit); err != nil {
		return restutil.BadRequest(err)
	}

	// without an explicit limit, fetch one more to detect a truncated result
	fes, err := e.filter(req.Context(), &filter, e.limit+1)
	if err != nil {
		return err
	}
	if len(fes) > int(e.limit) {
		return restutil.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return restutil.WriteJSON(w, fes)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
