// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/streams/builtin/reverts"
	"github.com/vechain/streams/runtime"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest, "bad\n"},
		{"no cause", HTTPError(nil, http.StatusTeapot), http.StatusTeapot, ""},
		{"revert", errors.Wrap(reverts.New("nope"), "call"), http.StatusBadRequest, "call: nope\n"},
		{"out of gas", runtime.ErrOutOfGas, http.StatusBadRequest, runtime.ErrOutOfGas.Error() + "\n"},
		{"internal", errors.New("disk"), http.StatusInternalServerError, "disk\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.body, rr.Body.String())
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}

func TestPathParams(t *testing.T) {
	router := mux.NewRouter()
	router.Path("/{addr}/{n}").HandlerFunc(WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		addr, err := Address(r, "addr")
		if err != nil {
			return err
		}
		n, err := Uint64(r, "n")
		if err != nil {
			return err
		}
		at, err := OptionalUint64(r, "at")
		if err != nil {
			return err
		}
		flag, err := Bool(r, "flag")
		if err != nil {
			return err
		}
		return WriteJSON(w, M{"addr": addr, "n": n, "at": at, "flag": flag})
	}))

	get := func(url string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
		return rr
	}

	rr := get("/0x0000000000000000000000000000000000000001/7?at=3&flag=true")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, JSONContentType, rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"addr":"0x0000000000000000000000000000000000000001","n":7,"at":3,"flag":true}`, rr.Body.String())

	rr = get("/0x0000000000000000000000000000000000000001/7")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"addr":"0x0000000000000000000000000000000000000001","n":7,"at":null,"flag":false}`, rr.Body.String())

	for _, url := range []string{
		"/0x01/7",
		"/0x0000000000000000000000000000000000000001/x",
		"/0x0000000000000000000000000000000000000001/7?at=-1",
		"/0x0000000000000000000000000000000000000001/7?flag=maybe",
	} {
		assert.Equal(t, http.StatusBadRequest, get(url).Code, url)
	}
}

func TestAmount(t *testing.T) {
	var v struct {
		A *math.HexOrDecimal256 `json:"a"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"0x10"}`), &v))
	amount, err := Amount(v.A)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), amount.Uint64())

	require.NoError(t, json.Unmarshal([]byte(`{"a":"1000"}`), &v))
	amount, err = Amount(v.A)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), amount.Uint64())

	amount, err = Amount(nil)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	_, err = Amount((*math.HexOrDecimal256)(big.NewInt(-1)))
	assert.Error(t, err)

	out, err := json.Marshal(JSONAmount(uint256.NewInt(255)))
	require.NoError(t, err)
	assert.Equal(t, `"0xff"`, string(out))
}
