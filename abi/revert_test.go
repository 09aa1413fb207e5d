// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpackRevert(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		reason  string
		wantErr bool
	}{
		{"empty", "0x", "", true},
		{"wrong selector", "0x08c379a1", "", true},
		{
			"error string",
			"0x08c379a0" +
				"0000000000000000000000000000000000000000000000000000000000000020" +
				"0000000000000000000000000000000000000000000000000000000000000011" +
				"73747265616d206e6f7420616374697665000000000000000000000000000000",
			"stream not active",
			false,
		},
		{
			"panic code",
			"0x4e487b71" + "0000000000000000000000000000000000000000000000000000000000000011",
			"arithmetic underflow or overflow",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, err := UnpackRevert(hexutil.MustDecode(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
