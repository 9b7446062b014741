package session

import "time"

// PollInterval is the fixed acquisition period.
const PollInterval = time.Second

// Handle identifies one periodic schedule. The zero Handle never refers to
// a live schedule.
type Handle uint64

// Clock schedules periodic callbacks.
//
// Start invokes onTick every interval, first after one full interval has
// elapsed. Cancel is idempotent; once it returns, onTick for that handle is
// never invoked again, even for a tick that was already pending.
type Clock interface {
	Start(interval time.Duration, onTick func()) Handle
	Cancel(h Handle)
}
