package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/rileyhilliard/fieldmon/internal/config"
)

// Log kinds for SystemService.Log and Export.
const (
	LogSystem = "system"
	LogComm   = "comm"
)

const logCapacity = 500

// SystemInfo feeds the Home status cards.
type SystemInfo struct {
	CPUPercent float64
	MemPercent float64
	Uptime     time.Duration
	Version    string
}

// UptimeString renders Uptime as "3d 12h 45m".
func (i SystemInfo) UptimeString() string {
	d := i.Uptime
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

// CommStatus summarises the field links.
type CommStatus struct {
	Network    bool
	RS485      bool
	RatePct    int
	LastUpdate string
}

// Probe samples host metrics. HostProbe is the gopsutil implementation.
type Probe func(ctx context.Context) (SystemInfo, error)

// HostProbe reads CPU, memory and uptime of the machine we run on.
func HostProbe(ctx context.Context) (SystemInfo, error) {
	var info SystemInfo

	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return info, err
	}
	if len(pct) > 0 {
		info.CPUPercent = pct[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return info, err
	}
	info.MemPercent = vm.UsedPercent

	up, err := host.UptimeWithContext(ctx)
	if err != nil {
		return info, err
	}
	info.Uptime = time.Duration(up) * time.Second
	return info, nil
}

// SystemService exposes host info, serial settings and the panel logs.
type SystemService struct {
	probe     Probe
	version   string
	exportDir string
	devices   *DeviceService
	now       func() time.Time

	mu      sync.Mutex
	serial  config.SerialConfig
	sysLog  []string
	commLog []string
}

// NewSystemService wires the system service. probe and now may be nil.
func NewSystemService(cfg *config.Config, devices *DeviceService, version string, probe Probe, now func() time.Time) *SystemService {
	if probe == nil {
		probe = HostProbe
	}
	if now == nil {
		now = time.Now
	}
	s := &SystemService{
		probe:     probe,
		version:   version,
		exportDir: cfg.Log.ExportDir,
		devices:   devices,
		now:       now,
		serial:    cfg.Serial,
	}
	s.Logf(LogSystem, "System started (version %s)", version)
	s.Logf(LogSystem, "Serial port %s opened at %d baud", cfg.Serial.Port, cfg.Serial.BaudRate)
	s.Logf(LogSystem, "Network %s", describeNetwork(cfg.Network))
	return s
}

func describeNetwork(n config.NetworkConfig) string {
	if n.DHCP {
		return "configured by DHCP"
	}
	return "configured: " + n.IP
}

// Info samples the host. Probe failures come back as code 500.
func (s *SystemService) Info(ctx context.Context) Result[SystemInfo] {
	info, err := s.probe(ctx)
	if err != nil {
		return Fail[SystemInfo](CodeIOFailure, "System info unavailable: %v", err)
	}
	info.Version = s.version
	return OK(info)
}

// Version is the build version reported on the Help page.
func (s *SystemService) Version() string {
	return s.version
}

// CommStatus derives the link summary from the device registry.
func (s *SystemService) CommStatus() Result[CommStatus] {
	online, total := s.devices.Counts()
	rate := 100
	if total > 0 {
		rate = online * 100 / total
	}
	return OK(CommStatus{
		Network:    true,
		RS485:      online > 0,
		RatePct:    rate,
		LastUpdate: s.now().Format("15:04:05"),
	})
}

// SerialConfig returns the RS-485 settings.
func (s *SystemService) SerialConfig() Result[config.SerialConfig] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return OK(s.serial)
}

// SetSerialConfig validates and stores RS-485 settings.
func (s *SystemService) SetSerialConfig(c config.SerialConfig) Result[Empty] {
	candidate := config.DefaultConfig()
	candidate.Serial = c
	if err := config.Validate(candidate); err != nil {
		return Fail[Empty](CodeInvalid, "Invalid serial settings")
	}
	s.mu.Lock()
	s.serial = c
	s.mu.Unlock()
	s.Logf(LogSystem, "Serial port %s reconfigured to %d baud", c.Port, c.BaudRate)
	return Done()
}

// RestartComm logs a restart of the polling link.
func (s *SystemService) RestartComm() Result[Empty] {
	s.Logf(LogSystem, "Communication service restarted")
	return Done()
}

// Logf appends a timestamped line to the named log.
func (s *SystemService) Logf(kind, format string, args ...interface{}) {
	line := fmt.Sprintf("[%s] %s", s.now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))

	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case LogComm:
		s.commLog = appendCapped(s.commLog, line)
	default:
		s.sysLog = appendCapped(s.sysLog, line)
	}
}

// Log returns a copy of the named log, oldest first.
func (s *SystemService) Log(kind string) Result[[]string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	var src []string
	switch kind {
	case LogSystem:
		src = s.sysLog
	case LogComm:
		src = s.commLog
	default:
		return Fail[[]string](CodeInvalid, "Unknown log %q", kind)
	}
	out := make([]string, len(src))
	copy(out, src)
	return OK(out)
}

// Export writes the named log to the export directory and returns the path.
func (s *SystemService) Export(kind string) Result[string] {
	lines := s.Log(kind)
	if !lines.IsSuccess() {
		return failAs[string](lines)
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return Fail[string](CodeIOFailure, "Cannot create %s: %v", s.exportDir, err)
	}
	name := fmt.Sprintf("fieldmon-%s-%s.log", kind, s.now().Format("20060102-150405"))
	path := filepath.Join(s.exportDir, name)
	body := strings.Join(lines.Data, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return Fail[string](CodeIOFailure, "Cannot write %s: %v", path, err)
	}
	s.Logf(LogSystem, "Exported %s log to %s", kind, path)
	return OK(path)
}

func appendCapped(log []string, line string) []string {
	log = append(log, line)
	if len(log) > logCapacity {
		log = log[len(log)-logCapacity:]
	}
	return log
}
