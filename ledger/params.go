// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

// Config keys understood by the state configuration map.
const (
	ConfigMaxTxAge          = "maxtxage"
	ConfigMaxTxPerBlock     = "maxtxperblock"
	ConfigMaxTimersPerBlock = "maxtimersperblock"
	ConfigRegisterAddresses = "registeraddresses"
)

// Defaults and lower bounds for config values.
const (
	DefaultMaxTxAge      int64 = 86400 // seconds
	MinimumMaxTxAge      int64 = 5
	DefaultMaxTxPerBlock int64 = 100000
	MinimumMaxTxPerBlock int64 = 100

	DefaultMaxTimersPerBlock int64 = 200
	MinimumMaxTimersPerBlock int64 = 10
)

// StateVersion is the version stamped onto entries created by this implementation.
const StateVersion uint64 = 5

// TimeEventName is the event name delivered to contracts on their scheduled time.
const TimeEventName = "time"
