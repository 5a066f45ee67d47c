// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state holds the ledger state and the snapshots transactions are applied through.
//
// Snapshots nest without limit. Each category is read through a lazily
// created overlay: durable over a State collection, nested over the parent
// snapshot's overlay, or initial when the category does not exist yet.
// Only the root snapshot's FinalizeBlock writes into the State.
package state
