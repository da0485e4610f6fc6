package passkeys

import (
	"sync"

	"github.com/samber/lo"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
)

// Stage names a step of SignUserOp. The set is open: observers should ignore
// stages they do not know.
type Stage string

const (
	StagePreSign            Stage = "pre_sign"
	StageHashComputed       Stage = "hash_computed"
	StageAssertionRequested Stage = "assertion_requested"
	StageSigned             Stage = "signed"
	StageFailed             Stage = "failed"
)

// ProgressObserver is notified synchronously on the signing goroutine. It
// receives a copy of the operation and must not block for long.
type ProgressObserver func(op *userop.UserOperation, stage Stage)

type observerEntry struct {
	id  uint64
	obs ProgressObserver
}

type observers struct {
	mu      sync.Mutex
	nextID  uint64
	entries []observerEntry
}

func (o *observers) register(obs ProgressObserver) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.entries = append(o.entries, observerEntry{id: id, obs: obs})

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.entries = lo.Reject(o.entries, func(e observerEntry, _ int) bool { return e.id == id })
		})
	}
}

func (o *observers) replace(obs ProgressObserver) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.entries = nil
	if obs != nil {
		o.nextID++
		o.entries = []observerEntry{{id: o.nextID, obs: obs}}
	}
}

// notify runs outside the lock so an observer may unregister itself.
func (o *observers) notify(op *userop.UserOperation, stage Stage) {
	o.mu.Lock()
	snapshot := lo.Map(o.entries, func(e observerEntry, _ int) ProgressObserver { return e.obs })
	o.mu.Unlock()

	for _, obs := range snapshot {
		obs(op.Copy(), stage)
	}
}
