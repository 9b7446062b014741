package service

import (
	"net"
	"sync"

	"github.com/rileyhilliard/fieldmon/internal/config"
)

// NetworkService holds the pending and applied Ethernet settings.
type NetworkService struct {
	mu      sync.RWMutex
	pending config.NetworkConfig
	applied config.NetworkConfig
}

// NewNetworkService starts with cfg both pending and applied.
func NewNetworkService(cfg config.NetworkConfig) *NetworkService {
	return &NetworkService{pending: cfg, applied: cfg}
}

// Get returns the pending settings.
func (s *NetworkService) Get() Result[config.NetworkConfig] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return OK(s.pending)
}

// Applied returns the settings last applied.
func (s *NetworkService) Applied() config.NetworkConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// Set stores new pending settings. Static addressing requires valid IPv4
// addresses for ip, gateway and subnet.
func (s *NetworkService) Set(cfg config.NetworkConfig) Result[Empty] {
	if !cfg.DHCP {
		fields := []struct{ name, value string }{
			{"IP address", cfg.IP},
			{"Gateway", cfg.Gateway},
			{"Subnet mask", cfg.Subnet},
		}
		for _, f := range fields {
			if ip := net.ParseIP(f.value); ip == nil || ip.To4() == nil {
				return Fail[Empty](CodeInvalid, "%s %q is not a valid IPv4 address", f.name, f.value)
			}
		}
	}
	for _, dns := range []string{cfg.DNS1, cfg.DNS2} {
		if dns != "" && net.ParseIP(dns) == nil {
			return Fail[Empty](CodeInvalid, "DNS server %q is not a valid address", dns)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = cfg
	return Done()
}

// Apply makes the pending settings current.
func (s *NetworkService) Apply() Result[Empty] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = s.pending
	return Done()
}
