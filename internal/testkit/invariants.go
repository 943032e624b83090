package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"ownck/internal/ownership"
)

// CheckSnapshotInvariants runs the structural invariants of a checker snapshot:
// 1) binding IDs are dense and in declaration order
// 2) no binding holds an exclusive borrow together with shared ones
// 3) moved or dropped bindings hold no borrows
// 4) active borrows match the per-binding counts and point at live bindings
// 5) every dropped binding appears in the drop log exactly once
// 6) within a scope only the newest live binding of a name may be Owned
func CheckSnapshotInvariants(snap ownership.Snapshot) error {
	for i, b := range snap.Bindings {
		want, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			return fmt.Errorf("binding count overflow: %w", err)
		}
		if uint32(b.ID) != want {
			return fmt.Errorf("binding %q has id %d at position %d", b.Name, b.ID, i)
		}
		if b.Exclusive && b.Shared > 0 {
			return fmt.Errorf("binding %q is borrowed exclusively and %d times shared", b.Name, b.Shared)
		}
		if b.State != ownership.Owned && (b.Exclusive || b.Shared > 0) {
			return fmt.Errorf("binding %q is %s but still borrowed", b.Name, b.State)
		}
	}

	shared := make(map[ownership.BindingID]int)
	exclusive := make(map[ownership.BindingID]int)
	for _, br := range snap.Borrows {
		if !br.Active {
			continue
		}
		target, ok := snap.Binding(br.Target)
		if !ok {
			return fmt.Errorf("borrow %d targets unknown binding %d", br.ID, br.Target)
		}
		if !target.Live {
			return fmt.Errorf("borrow %d targets popped binding %q", br.ID, target.Name)
		}
		if br.Mode == ownership.Exclusive {
			exclusive[br.Target]++
		} else {
			shared[br.Target]++
		}
	}
	for _, b := range snap.Bindings {
		wantExclusive := 0
		if b.Exclusive {
			wantExclusive = 1
		}
		if shared[b.ID] != b.Shared || exclusive[b.ID] != wantExclusive {
			return fmt.Errorf("binding %q counts shared=%d exclusive=%v, borrows say shared=%d exclusive=%d",
				b.Name, b.Shared, b.Exclusive, shared[b.ID], exclusive[b.ID])
		}
	}

	logged := make(map[ownership.BindingID]int, len(snap.Drops))
	for _, id := range snap.Drops {
		logged[id]++
		b, ok := snap.Binding(id)
		if !ok {
			return fmt.Errorf("drop log references unknown binding %d", id)
		}
		if b.State != ownership.Dropped {
			return fmt.Errorf("drop log lists %q in state %s", b.Name, b.State)
		}
	}
	for _, b := range snap.Bindings {
		if b.State == ownership.Dropped && logged[b.ID] != 1 {
			return fmt.Errorf("dropped binding %q logged %d times", b.Name, logged[b.ID])
		}
	}

	type key struct {
		name  string
		scope ownership.ScopeID
	}
	newest := make(map[key]ownership.BindingID)
	for _, b := range snap.Bindings {
		if b.Live {
			newest[key{b.Name, b.Scope}] = b.ID
		}
	}
	for _, b := range snap.Bindings {
		if b.Live && b.State == ownership.Owned && newest[key{b.Name, b.Scope}] != b.ID {
			return fmt.Errorf("shadowed binding %q in scope %d is still owned", b.Name, b.Scope)
		}
	}
	return nil
}

// CheckFinishedInvariants checks a snapshot taken after Finish: every scope
// is closed, nothing is Owned or live, and no borrow is still active.
func CheckFinishedInvariants(snap ownership.Snapshot) error {
	if err := CheckSnapshotInvariants(snap); err != nil {
		return err
	}
	if snap.Depth != 0 {
		return fmt.Errorf("%d scopes still open", snap.Depth)
	}
	for _, b := range snap.Bindings {
		if b.State == ownership.Owned {
			return fmt.Errorf("binding %q in scope %d is still owned", b.Name, b.Scope)
		}
		if b.Live {
			return fmt.Errorf("binding %q in scope %d is still resolvable", b.Name, b.Scope)
		}
	}
	for _, br := range snap.Borrows {
		if br.Active {
			return fmt.Errorf("borrow %d of binding %d is still active", br.ID, br.Target)
		}
	}
	return nil
}
