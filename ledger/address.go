// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// PublicKeyToAddress derives the account address owned by a public key.
// The address is the last 20 bytes of the keccak-256 hash of the key, hex encoded with a checksum.
func PublicKeyToAddress(pub []byte) string {
	h := Keccak256(pub)
	return common.BytesToAddress(h[12:]).Hex()
}

// IsAddress reports whether s is a well formed hex address.
func IsAddress(s string) bool {
	return common.IsHexAddress(s)
}

// VerifyAddress reports whether address is the one derived from pub.
// Comparison ignores the checksum casing.
func VerifyAddress(address string, pub []byte) bool {
	if len(pub) == 0 || !IsAddress(address) {
		return false
	}
	return strings.EqualFold(PublicKeyToAddress(pub), address)
}
