// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes32JSON(t *testing.T) {
	original := `"0x000000000000000000000000000000000000000000000000000073747265616d"`

	var b Bytes32
	assert.NoError(t, json.Unmarshal([]byte(original), &b))
	assert.Equal(t, BytesToBytes32([]byte("stream")), b)

	out, err := json.Marshal(&b)
	assert.NoError(t, err)
	assert.Equal(t, original, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"0x1234"`), &b))
}

func TestUint64ToBytes32(t *testing.T) {
	assert.Equal(t, BytesToBytes32([]byte{1, 2}), Uint64ToBytes32(0x0102))
	assert.True(t, Uint64ToBytes32(0).IsZero())
	assert.Equal(t, uint64(1<<40+7), Uint64ToBytes32(1<<40+7).Uint64())
}

func TestParseBytes32(t *testing.T) {
	want := BytesToBytes32([]byte{0xab})
	for _, s := range []string{
		"0x00000000000000000000000000000000000000000000000000000000000000ab",
		"0X00000000000000000000000000000000000000000000000000000000000000AB",
		"00000000000000000000000000000000000000000000000000000000000000ab",
	} {
		got, err := ParseBytes32(s)
		assert.NoError(t, err, s)
		assert.Equal(t, want, got)
	}
	for _, s := range []string{"", "0xab", "0y00000000000000000000000000000000000000000000000000000000000000ab"} {
		_, err := ParseBytes32(s)
		assert.Error(t, err, s)
	}
	assert.Panics(t, func() { MustParseBytes32("zz") })
}
