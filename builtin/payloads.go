// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import "math/big"

// Payloads are rlp encoded into the transaction payload.
type (
	RegisterAddressPayload struct {
		Metadata string
	}

	RegisterNamespacePayload struct {
		Namespace string
		Metadata  string
	}

	IssueAssetPayload struct {
		Namespace string
		Class     string
		To        string // empty issues to the issuer
		Amount    *big.Int
		Metadata  string
	}

	TransferAssetPayload struct {
		Asset  string
		To     string
		Amount *big.Int
	}

	LockAssetPayload struct {
		Asset  string // an asset id, or a bare namespace
		Reason string
	}

	EncumberAssetPayload struct {
		Reference   string
		Asset       string
		Beneficiary string
		Amount      *big.Int
		Expiry      uint64
	}

	UnencumberAssetPayload struct {
		Address   string
		Reference string
	}

	MemoPayload struct {
		Text string
	}

	GrantPoaPayload struct {
		Reference string
		Attorney  string
		Types     []uint16
		Expiry    uint64
	}

	RevokePoaPayload struct {
		Reference string
	}

	AddXChainPayload struct {
		ChainID    uint32
		Parameters uint64
		SignNodes  []XChainSignNode
	}

	XChainSignNode struct {
		PublicKey string
		Amount    *big.Int
	}

	RemoveXChainPayload struct {
		ChainID uint32
	}

	// XChainPackagePayload carries the credits of one block of a connected chain.
	XChainPackagePayload struct {
		Credits []XChainCredit
	}

	XChainCredit struct {
		To     string
		Asset  string
		Amount *big.Int
	}

	NewContractPayload struct {
		Function string
		Parties  []string
		Start    uint64 // time event, 0 for none
		Data     []byte
	}

	CancelContractPayload struct {
		Contract string
	}
)
