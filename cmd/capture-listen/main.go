// ABOUTME: Listener for Sendspin capture servers
// ABOUTME: Discovers a server via mDNS, decodes its frames and plays them locally
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sendspin/sendspin-capture/internal/client"
	"github.com/Sendspin/sendspin-capture/internal/discovery"
	"github.com/Sendspin/sendspin-capture/internal/protocol"
	"github.com/Sendspin/sendspin-capture/internal/timesync"
	"github.com/Sendspin/sendspin-capture/pkg/audio/output"
	"github.com/google/uuid"
)

var (
	serverAddr = flag.String("server", "", "Manual server address host:port (skip mDNS)")
	path       = flag.String("path", protocol.DefaultPath, "WebSocket endpoint path")
	name       = flag.String("name", "", "Listener friendly name (default: hostname-capture-listener)")
	clientID   = flag.String("id", "", "Client ID (default: random)")
	codec      = flag.String("codec", "auto", "Requested codec: auto or pcm")
	volume     = flag.Int("volume", 100, "Playback volume (0-100)")
	noPlayback = flag.Bool("no-playback", false, "Decode frames without playing them")
	logFile    = flag.String("log-file", "capture-listen.log", "Log file path")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()
	log.SetOutput(io.MultiWriter(os.Stdout, f))

	listenerName := *name
	if listenerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		listenerName = fmt.Sprintf("%s-capture-listener", hostname)
	}

	id := *clientID
	if id == "" {
		id = uuid.New().String()
	}

	addr, endpoint := *serverAddr, *path
	if addr == "" {
		info, err := discover()
		if err != nil {
			log.Fatalf("%v", err)
		}
		addr, endpoint = info.Address(), info.Path
	}

	codecs := []string{protocol.CodecOpus, protocol.CodecPCM}
	if *codec == protocol.CodecPCM {
		codecs = []string{protocol.CodecPCM}
	}

	c := client.NewClient(client.Config{
		ServerAddr:      addr,
		Path:            endpoint,
		ClientID:        id,
		Name:            listenerName,
		SupportedCodecs: codecs,
		Debug:           *debug,
	})
	if err := c.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	stream := c.Stream()

	var out output.Output
	if !*noPlayback {
		oto := output.NewOto()
		if err := oto.Open(stream.SampleRate, stream.Channels); err != nil {
			log.Fatalf("Failed to open audio output: %v", err)
		}
		oto.SetVolume(*volume)
		defer oto.Close()
		out = oto
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	report := time.NewTicker(5 * time.Second)
	defer report.Stop()

	clock := timesync.NewClock(*debug)
	start := time.Now()
	localMicros := func() int64 { return time.Since(start).Microseconds() }
	var latency time.Duration

	// Prime the clock before the first report
	if err := c.SendTimeSync(localMicros()); err != nil {
		log.Printf("Warning: time sync failed: %v", err)
	}

	for {
		select {
		case frame, ok := <-c.Frames:
			if !ok {
				log.Printf("Connection closed by server")
				return
			}
			latency = clock.Latency(frame.Timestamp, localMicros())
			if out != nil {
				if err := out.Write(frame.Samples); err != nil {
					log.Printf("Warning: playback write failed: %v", err)
				}
			}

		case <-report.C:
			if err := c.SendTimeSync(localMicros()); err != nil {
				log.Printf("Warning: time sync failed: %v", err)
			}
			if err := c.SendState("listening"); err != nil {
				log.Printf("Warning: state report failed: %v", err)
			}
			_, rtt, quality := clock.Stats()
			log.Printf("Received %d frames, lost %d, latency %v (sync %s, rtt %dus)",
				c.Received(), c.Lost(), latency.Round(time.Millisecond), quality, rtt)

		case resp := <-c.TimeSyncResp:
			clock.Observe(resp.ClientTransmitted, resp.ServerReceived, resp.ServerTransmitted, localMicros())

		case <-c.Ended():
			log.Printf("Capture stream ended (received %d frames, lost %d)", c.Received(), c.Lost())
			return

		case sig := <-sigChan:
			log.Printf("Received %v signal, disconnecting...", sig)
			return
		}
	}
}

// discover browses mDNS for the first capture server
func discover() (*discovery.ServerInfo, error) {
	log.Printf("Starting server discovery...")
	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()

	if err := disc.Browse(); err != nil {
		return nil, fmt.Errorf("failed to browse: %w", err)
	}

	select {
	case info := <-disc.Servers():
		log.Printf("Discovered %s at %s (%dHz, %d-sample frames)", info.Name, info.Address(), info.SampleRate, info.FrameSize)
		return info, nil
	case <-time.After(10 * time.Second):
		return nil, fmt.Errorf("no capture server found after 10 seconds")
	}
}
