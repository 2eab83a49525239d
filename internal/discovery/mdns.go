// ABOUTME: mDNS service discovery for capture servers
// ABOUTME: Handles advertisement by the server and browsing by listeners
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service advertised by capture servers
const ServiceType = "_sendspin-capture._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Path        string // websocket path, advertised in TXT
	SampleRate  int    // frame rate, advertised in TXT
	FrameSize   int
}

// Manager handles mDNS operations
type Manager struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	servers chan *ServerInfo
}

// ServerInfo describes a discovered server
type ServerInfo struct {
	Name       string
	Host       string
	Port       int
	Path       string
	SampleRate int
	FrameSize  int
}

// Address returns host:port
func (s *ServerInfo) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServerInfo, 10),
	}
}

// Advertise advertises this capture server via mDNS
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		buildTXT(m.config),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for capture servers until Stop is called
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop queries repeatedly, reporting each server address once
func (m *Manager) browseLoop() {
	seen := make(map[string]bool)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}
				server := entryToServer(entry)
				if seen[server.Address()] {
					continue
				}
				seen[server.Address()] = true

				log.Printf("Discovered server: %s at %s", server.Name, server.Address())

				select {
				case m.servers <- server:
				case <-m.ctx.Done():
				}
			}
		}()

		params := &mdns.QueryParam{
			Service:             ServiceType,
			Domain:              "local",
			Timeout:             3 * time.Second,
			Entries:             entries,
			WantUnicastResponse: false,
		}

		if err := mdns.Query(params); err != nil {
			log.Printf("Warning: mDNS query failed: %v", err)
		}
		close(entries)
		<-done
	}
}

// Servers returns the channel of discovered servers
func (m *Manager) Servers() <-chan *ServerInfo {
	return m.servers
}

// Stop stops the discovery manager
func (m *Manager) Stop() {
	m.cancel()
}

func buildTXT(config Config) []string {
	path := config.Path
	if path == "" {
		path = "/capture"
	}
	txt := []string{"path=" + path}
	if config.SampleRate > 0 {
		txt = append(txt, "rate="+strconv.Itoa(config.SampleRate))
	}
	if config.FrameSize > 0 {
		txt = append(txt, "frame="+strconv.Itoa(config.FrameSize))
	}
	return txt
}

func entryToServer(entry *mdns.ServiceEntry) *ServerInfo {
	server := &ServerInfo{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Host: entry.AddrV4.String(),
		Port: entry.Port,
		Path: "/capture",
	}
	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "path":
			server.Path = value
		case "rate":
			server.SampleRate, _ = strconv.Atoi(value)
		case "frame":
			server.FrameSize, _ = strconv.Atoi(value)
		}
	}
	return server
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
