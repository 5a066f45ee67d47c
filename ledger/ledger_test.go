// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBytes32(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0x" + hex.EncodeToString(make([]byte, 32)), false},
		{hex.EncodeToString(make([]byte, 32)), false},
		{"1x" + hex.EncodeToString(make([]byte, 32)), true},
		{"0x00", true},
		{"0x" + "zz" + hex.EncodeToString(make([]byte, 31)), true},
	}
	for _, tt := range tests {
		_, err := ParseBytes32(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}
}

func TestBytesToBytes32(t *testing.T) {
	b := BytesToBytes32([]byte{1, 2})
	assert.Equal(t, byte(1), b[30])
	assert.Equal(t, byte(2), b[31])

	long := make([]byte, 40)
	long[39] = 9
	assert.Equal(t, byte(9), BytesToBytes32(long)[31])

	var text Bytes32
	assert.NoError(t, text.UnmarshalText([]byte(b.String())))
	assert.Equal(t, b, text)
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, Blake2b([]byte("ab")), Blake2b([]byte("ba")))
	assert.Equal(t, RLPHash([]uint64{1, 2}), RLPHash([]uint64{1, 2}))
}

func TestKeccak256(t *testing.T) {
	// keccak256 of the empty string
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256().String())
}

func TestVerifyAddress(t *testing.T) {
	pub := []byte("some public key bytes")
	addr := PublicKeyToAddress(pub)

	assert.True(t, IsAddress(addr))
	assert.True(t, VerifyAddress(addr, pub))
	assert.False(t, VerifyAddress(addr, []byte("other key")))
	assert.False(t, VerifyAddress("not-an-address", pub))
	assert.False(t, VerifyAddress(addr, nil))
}
