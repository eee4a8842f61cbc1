// internal/application/persist/reconcile.go
package persist

import (
	"strings"
	"time"
)

// ReconcilePolicy decides what happens to local vs remote snapshots at sign-in.
type ReconcilePolicy string

const (
	// PreferRemote adopts a non-empty remote snapshot and overwrites local;
	// otherwise local is adopted and pushed to remote (first sync).
	PreferRemote ReconcilePolicy = "prefer_remote"
	// UnionMerge unions both snapshots by product id, remote entries winning.
	UnionMerge ReconcilePolicy = "union_merge"
)

// ParsePolicy maps a config value to a policy (unknown -> prefer_remote).
func ParsePolicy(v string) ReconcilePolicy {
	if ReconcilePolicy(strings.ToLower(strings.TrimSpace(v))) == UnionMerge {
		return UnionMerge
	}
	return PreferRemote
}

// Reconcile outcomes (also used as metric labels).
const (
	OutcomeAdoptedLocal  = "adopted_local"
	OutcomeAdoptedRemote = "adopted_remote"
	OutcomeMerged        = "merged"
	OutcomeRemoteError   = "remote_error"
)

// SyncObserver receives write and reconciliation events (metrics).
type SyncObserver interface {
	Observer
	Reconciled(store, outcome string)
}

// NopSyncObserver discards everything.
type NopSyncObserver struct{}

func (NopSyncObserver) RemoteWrite(string, time.Duration, error) {}
func (NopSyncObserver) Reconciled(string, string)                {}
