package service

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Function codes the simulator distinguishes.
const (
	FuncReadHolding = 3
	FuncReadInput   = 4
)

// HistoryLen is the number of points kept per register.
const HistoryLen = 60

// RegisterReading is one register value as read from a device.
type RegisterReading struct {
	Address   int
	Name      string
	Value     float64
	Unit      string
	Timestamp string
}

// HistoryPoint is one sample in a register's trend.
type HistoryPoint struct {
	Time  string
	Value float64
}

// RegisterStats summarises a register's recent samples.
type RegisterStats struct {
	DeviceID int
	Address  int
	Unit     string
	Current  float64
	Min      float64
	Max      float64
	Avg      float64
	Updated  string
	Points   []HistoryPoint
}

type regKey struct {
	device, addr int
}

type regTrace struct {
	unit   string
	points []HistoryPoint
}

// ModbusService simulates the RS-485 register source. Values random-walk
// per register so trends look plausible; offline devices never answer.
type ModbusService struct {
	devices *DeviceService
	now     func() time.Time

	mu      sync.Mutex
	rng     *rand.Rand
	polling map[int]bool
	traces  map[regKey]*regTrace
}

// NewModbusService builds a simulator over devices. A zero seed seeds from
// the clock. now may be nil.
func NewModbusService(devices *DeviceService, seed int64, now func() time.Time) *ModbusService {
	if now == nil {
		now = time.Now
	}
	if seed == 0 {
		seed = now().UnixNano()
	}
	return &ModbusService{
		devices: devices,
		now:     now,
		rng:     rand.New(rand.NewSource(seed)),
		polling: make(map[int]bool),
		traces:  make(map[regKey]*regTrace),
	}
}

// MarkPolling records whether a session is acquiring from deviceID.
func (m *ModbusService) MarkPolling(deviceID int, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if active {
		m.polling[deviceID] = true
		return
	}
	delete(m.polling, deviceID)
}

// IsPolling reports whether deviceID is marked as polling.
func (m *ModbusService) IsPolling(deviceID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polling[deviceID]
}

// Polling returns the ids currently marked as polling, ascending.
func (m *ModbusService) Polling() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.polling))
	for id := range m.polling {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ReadCurrentValues reads the device's configured register block.
func (m *ModbusService) ReadCurrentValues(deviceID int) Result[[]RegisterReading] {
	dev := m.devices.Load(deviceID)
	if !dev.IsSuccess() {
		return failAs[[]RegisterReading](dev)
	}
	d := dev.Data
	if !d.Online {
		return Fail[[]RegisterReading](CodeNoResponse, "No response from device %d (address %d)", d.ID, d.Address)
	}

	unitFor := func(i int) string {
		if d.FunctionCode == FuncReadInput {
			return "mA"
		}
		if i%2 == 0 {
			return "℃"
		}
		return "bar"
	}
	return OK(m.sample(d.ID, d.StartAddress, d.RegisterCount, "Register", unitFor))
}

// ReadInputRegisters reads the fixed five-register input block at 100.
func (m *ModbusService) ReadInputRegisters(deviceID int) Result[[]RegisterReading] {
	dev := m.devices.Load(deviceID)
	if !dev.IsSuccess() {
		return failAs[[]RegisterReading](dev)
	}
	if !dev.Data.Online {
		return Fail[[]RegisterReading](CodeNoResponse, "No response from device %d", deviceID)
	}
	return OK(m.sample(deviceID, 100, 5, "Input", func(int) string { return "mA" }))
}

// RegisterHistory returns the trend and statistics for one register. A
// register never read yet gets a synthetic minute of samples.
func (m *ModbusService) RegisterHistory(deviceID, addr int) Result[RegisterStats] {
	if dev := m.devices.Load(deviceID); !dev.IsSuccess() {
		return failAs[RegisterStats](dev)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := regKey{deviceID, addr}
	tr, ok := m.traces[key]
	if !ok || len(tr.points) == 0 {
		tr = m.backfill(key)
	}

	pts := make([]HistoryPoint, len(tr.points))
	copy(pts, tr.points)

	st := RegisterStats{
		DeviceID: deviceID,
		Address:  addr,
		Unit:     tr.unit,
		Current:  pts[len(pts)-1].Value,
		Min:      math.Inf(1),
		Max:      math.Inf(-1),
		Updated:  m.now().Format("2006-01-02 15:04:05"),
		Points:   pts,
	}
	var sum float64
	for _, p := range pts {
		st.Min = math.Min(st.Min, p.Value)
		st.Max = math.Max(st.Max, p.Value)
		sum += p.Value
	}
	st.Avg = round2(sum / float64(len(pts)))
	return OK(st)
}

func (m *ModbusService) sample(deviceID, start, count int, label string, unitFor func(int) string) []RegisterReading {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	stamp := now.Format("15:04:05")
	out := make([]RegisterReading, 0, count)
	for i := 0; i < count; i++ {
		addr := start + i
		key := regKey{deviceID, addr}
		tr := m.traces[key]
		if tr == nil {
			tr = &regTrace{unit: unitFor(i)}
			m.traces[key] = tr
		}

		v := m.next(tr)
		tr.points = append(tr.points, HistoryPoint{Time: stamp, Value: v})
		if len(tr.points) > HistoryLen {
			tr.points = tr.points[len(tr.points)-HistoryLen:]
		}

		out = append(out, RegisterReading{
			Address:   addr,
			Name:      fmt.Sprintf("%s %d", label, addr),
			Value:     v,
			Unit:      tr.unit,
			Timestamp: stamp,
		})
	}
	return out
}

// next walks the register by up to ±2.5 around its previous value.
func (m *ModbusService) next(tr *regTrace) float64 {
	if len(tr.points) == 0 {
		return round2(10 + m.rng.Float64()*40)
	}
	prev := tr.points[len(tr.points)-1].Value
	v := prev + (m.rng.Float64()*5 - 2.5)
	if v < 0 {
		v = -v
	}
	return round2(v)
}

func (m *ModbusService) backfill(key regKey) *regTrace {
	tr := &regTrace{unit: "℃"}
	now := m.now()
	base := 25.0
	for i := 0; i < HistoryLen; i++ {
		tr.points = append(tr.points, HistoryPoint{
			Time:  now.Add(time.Duration(i-HistoryLen) * time.Second).Format("15:04:05"),
			Value: round2(base + (m.rng.Float64()*10 - 5)),
		})
	}
	m.traces[key] = tr
	return tr
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
