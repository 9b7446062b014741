package service

import (
	"sort"
	"sync"

	"github.com/rileyhilliard/fieldmon/internal/config"
)

// Device is a registered Modbus slave.
type Device struct {
	ID int
	config.DeviceConfig
	Online bool
}

// Status is the label shown in the device table.
func (d Device) Status() string {
	if d.Online {
		return "Online"
	}
	return "Offline"
}

// DeviceService is the in-memory device registry.
type DeviceService struct {
	mu      sync.RWMutex
	devices []Device
	nextID  int
}

// NewDeviceService seeds the registry. Devices whose Modbus address is in
// offline start (and stay) offline.
func NewDeviceService(seed []config.DeviceConfig, offline []int) *DeviceService {
	down := make(map[int]bool, len(offline))
	for _, a := range offline {
		down[a] = true
	}

	s := &DeviceService{nextID: 1}
	for _, d := range seed {
		s.devices = append(s.devices, Device{ID: s.nextID, DeviceConfig: d, Online: !down[d.Address]})
		s.nextID++
	}
	return s
}

// List returns a snapshot of every device, ordered by id.
func (s *DeviceService) List() Result[[]Device] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Device, len(s.devices))
	copy(out, s.devices)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return OK(out)
}

// Load returns one device.
func (s *DeviceService) Load(id int) Result[Device] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return OK(s.devices[i])
	}
	return Fail[Device](CodeNotFound, "Device not found")
}

// Validate checks the Modbus field limits (codes 1-5).
func (s *DeviceService) Validate(cfg config.DeviceConfig) Result[Empty] {
	if re := config.ValidateDevice(cfg); re != nil {
		return Fail[Empty](re.Code, "%s", re.Message)
	}
	return Done()
}

// Save adds a device when id is negative and updates it otherwise. The
// result carries the device id.
func (s *DeviceService) Save(id int, cfg config.DeviceConfig) Result[int] {
	if v := s.Validate(cfg); !v.IsSuccess() {
		return failAs[int](v)
	}
	if id < 0 {
		return s.Add(cfg)
	}
	if r := s.Update(id, cfg); !r.IsSuccess() {
		return failAs[int](r)
	}
	return OK(id)
}

// Add registers a new device. New devices start offline until a scan
// finds them.
func (s *DeviceService) Add(cfg config.DeviceConfig) Result[int] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addressTaken(cfg.Address, -1) {
		return Fail[int](CodeInvalid, "Modbus address %d already in use", cfg.Address)
	}
	id := s.nextID
	s.nextID++
	s.devices = append(s.devices, Device{ID: id, DeviceConfig: cfg})
	return OK(id)
}

// Update replaces a device's configuration, keeping its online state.
func (s *DeviceService) Update(id int, cfg config.DeviceConfig) Result[Empty] {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Fail[Empty](CodeNotFound, "Device not found")
	}
	if s.addressTaken(cfg.Address, id) {
		return Fail[Empty](CodeInvalid, "Modbus address %d already in use", cfg.Address)
	}
	s.devices[i].DeviceConfig = cfg
	return Done()
}

// Remove deletes a device.
func (s *DeviceService) Remove(id int) Result[Empty] {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Fail[Empty](CodeNotFound, "Device not found")
	}
	s.devices = append(s.devices[:i], s.devices[i+1:]...)
	return Done()
}

// SetOnline records whether a device answered its last request.
func (s *DeviceService) SetOnline(id int, online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.devices[i].Online = online
	}
}

// Scan returns the Modbus addresses that answered, ascending.
func (s *DeviceService) Scan() Result[[]int] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make([]int, 0, len(s.devices))
	for _, d := range s.devices {
		if d.Online {
			found = append(found, d.Address)
		}
	}
	sort.Ints(found)
	return OK(found)
}

// Counts returns (online, total).
func (s *DeviceService) Counts() (online, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if d.Online {
			online++
		}
	}
	return online, len(s.devices)
}

func (s *DeviceService) index(id int) int {
	for i, d := range s.devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *DeviceService) addressTaken(addr, exceptID int) bool {
	for _, d := range s.devices {
		if d.Address == addr && d.ID != exceptID {
			return true
		}
	}
	return false
}
