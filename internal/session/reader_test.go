package session

import "github.com/rileyhilliard/fieldmon/internal/service"

type countingReader struct {
	reads  int
	active map[int]bool
}

func (r *countingReader) MarkPolling(deviceID int, active bool) {
	if r.active == nil {
		r.active = map[int]bool{}
	}
	r.active[deviceID] = active
}

func (r *countingReader) ReadCurrentValues(int) service.Result[[]service.RegisterReading] {
	r.reads++
	return service.OK([]service.RegisterReading(nil))
}

var (
	_ Reader = (*countingReader)(nil)
	_ Reader = (*service.ModbusService)(nil)
	_ Reader = (*MockReader)(nil)
	_ Clock  = (*Loop)(nil)
)
