// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"strings"
)

// Type identifies the kind of a transaction.
type Type uint16

// Transaction types. Values are part of the hashed encoding and must never change.
const (
	GrantVotingPower         Type = 0x01
	RevokeVotingPower        Type = 0x02
	DoNothing                Type = 0x03
	RegisterNamespace        Type = 0x04
	RegisterAssetClass       Type = 0x05
	IssueAsset               Type = 0x06
	TransferAsset            Type = 0x07
	RegisterAddress          Type = 0x08
	TransferNamespace        Type = 0x09
	UpdateAssetClass         Type = 0x0A
	DeleteAssetClass         Type = 0x0B
	DeleteNamespace          Type = 0x0C
	UpdateAddressPermissions Type = 0x0D
	DeleteAddress            Type = 0x0E
	DoPrivilegedOperation    Type = 0x0F
	CreateMemo               Type = 0x10
	TransferAssetAsIssuer    Type = 0x11
	EncumberAsset            Type = 0x12
	UnencumberAsset          Type = 0x13
	ExerciseEncumbrance      Type = 0x14
	LockAsset                Type = 0x15
	UnlockAsset              Type = 0x16
	GrantPoa                 Type = 0x17
	RevokePoa                Type = 0x18
	IssueAndEncumberAsset    Type = 0x1C

	PoaRegisterNamespace     Type = 0x60
	PoaDeleteNamespace       Type = 0x61
	PoaTransferNamespace     Type = 0x62
	PoaRegisterAssetClass    Type = 0x63
	PoaIssueAsset            Type = 0x64
	PoaDeleteAssetClass      Type = 0x65
	PoaTransferAsset         Type = 0x66
	PoaTransferAssetAsIssuer Type = 0x67
	PoaNewContract           Type = 0x6A
	PoaCommitToContract      Type = 0x6B
	PoaCancelContract        Type = 0x6C
	PoaLockAsset             Type = 0x6D
	PoaUnlockAsset           Type = 0x6E
	PoaEncumberAsset         Type = 0x6F
	PoaUnencumberAsset       Type = 0x70
	PoaExerciseEncumbrance   Type = 0x71
	PoaDeleteAddress         Type = 0x74
	PoaIssueAndEncumberAsset Type = 0x75

	TransferAssetXChain Type = 0x80
	XChainTxPackage     Type = 0x81
	AddXChain           Type = 0x82
	RemoveXChain        Type = 0x83
	NewContract         Type = 0x90
	CancelContract      Type = 0x91
	CommitToContract    Type = 0x92
)

type typeInfo struct {
	name     string
	priority int
}

var types = map[Type]typeInfo{
	GrantVotingPower:         {"GRANT_VOTING_POWER", 0},
	RevokeVotingPower:        {"REVOKE_VOTING_POWER", 0},
	DoNothing:                {"DO_NOTHING", 0},
	RegisterNamespace:        {"REGISTER_NAMESPACE", -20},
	RegisterAssetClass:       {"REGISTER_ASSET_CLASS", -18},
	IssueAsset:               {"ISSUE_ASSET", -15},
	TransferAsset:            {"TRANSFER_ASSET", 0},
	RegisterAddress:          {"REGISTER_ADDRESS", -21},
	TransferNamespace:        {"TRANSFER_NAMESPACE", -19},
	UpdateAssetClass:         {"UPDATE_ASSET_CLASS", -17},
	DeleteAssetClass:         {"DELETE_ASSET_CLASS", 1},
	DeleteNamespace:          {"DELETE_NAMESPACE", 2},
	UpdateAddressPermissions: {"UPDATE_ADDRESS_PERMISSIONS", 2},
	DeleteAddress:            {"DELETE_ADDRESS", 20},
	DoPrivilegedOperation:    {"DO_PRIVILEGED_OPERATION", -22},
	CreateMemo:               {"CREATE_MEMO", 0},
	TransferAssetAsIssuer:    {"TRANSFER_ASSET_AS_ISSUER", -10},
	EncumberAsset:            {"ENCUMBER_ASSET", -10},
	UnencumberAsset:          {"UNENCUMBER_ASSET", -1},
	ExerciseEncumbrance:      {"EXERCISE_ENCUMBRANCE", -9},
	LockAsset:                {"LOCK_ASSET", 3},
	UnlockAsset:              {"UNLOCK_ASSET", 3},
	GrantPoa:                 {"GRANT_POA", 0},
	RevokePoa:                {"REVOKE_POA", 0},
	IssueAndEncumberAsset:    {"ISSUE_AND_ENCUMBER_ASSET", -15},

	PoaRegisterNamespace:     {"POA_REGISTER_NAMESPACE", -20},
	PoaDeleteNamespace:       {"POA_DELETE_NAMESPACE", 2},
	PoaTransferNamespace:     {"POA_TRANSFER_NAMESPACE", -19},
	PoaRegisterAssetClass:    {"POA_REGISTER_ASSET_CLASS", -18},
	PoaIssueAsset:            {"POA_ISSUE_ASSET", -15},
	PoaDeleteAssetClass:      {"POA_DELETE_ASSET_CLASS", 1},
	PoaTransferAsset:         {"POA_TRANSFER_ASSET", 0},
	PoaTransferAssetAsIssuer: {"POA_TRANSFER_ASSET_AS_ISSUER", -10},
	PoaNewContract:           {"POA_NEW_CONTRACT", -10},
	PoaCommitToContract:      {"POA_COMMIT_TO_CONTRACT", 0},
	PoaCancelContract:        {"POA_CANCEL_CONTRACT", 0},
	PoaLockAsset:             {"POA_LOCK_ASSET", 3},
	PoaUnlockAsset:           {"POA_UNLOCK_ASSET", 3},
	PoaEncumberAsset:         {"POA_ENCUMBER_ASSET", -10},
	PoaUnencumberAsset:       {"POA_UNENCUMBER_ASSET", -1},
	PoaExerciseEncumbrance:   {"POA_EXERCISE_ENCUMBRANCE", -9},
	PoaDeleteAddress:         {"POA_DELETE_ADDRESS", 20},
	PoaIssueAndEncumberAsset: {"POA_ISSUE_AND_ENCUMBER_ASSET", -15},

	TransferAssetXChain: {"TRANSFER_ASSET_X_CHAIN", 0},
	XChainTxPackage:     {"X_CHAIN_TX_PACKAGE", -16},
	AddXChain:           {"ADD_X_CHAIN", 0},
	RemoveXChain:        {"REMOVE_X_CHAIN", 0},
	NewContract:         {"NEW_CONTRACT", -10},
	CancelContract:      {"CANCEL_CONTRACT", 0},
	CommitToContract:    {"COMMIT_TO_CONTRACT", 0},
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(types))
	for t, info := range types {
		m[info.name] = t
	}
	return m
}()

// Priority returns the processing priority of the type. Lower runs first;
// negative is high priority, positive low priority.
func (t Type) Priority() int {
	return types[t].priority
}

// IsPoA reports whether the type is a delegated-authority variant.
func (t Type) IsPoA() bool {
	return t >= 0x60 && t <= 0x75
}

// Known reports whether t is a defined type.
func (t Type) Known() bool {
	_, ok := types[t]
	return ok
}

func (t Type) String() string {
	if info, ok := types[t]; ok {
		return info.name
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", uint16(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType looks a type up by its name, case insensitively.
func ParseType(name string) (Type, error) {
	if t, ok := typesByName[strings.ToUpper(name)]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown transaction type %q", name)
}
