// ABOUTME: Capture stream protocol message type definitions
// ABOUTME: Defines JSON control messages exchanged over the websocket
package protocol

// Message types
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeServerError = "server/error"
	TypeStreamStart = "stream/start"
	TypeStreamEnd   = "stream/end"
	TypeStreamMeta  = "stream/metadata"
	TypeClientState = "client/state"
	TypeClientTime  = "client/time"
	TypeServerTime  = "server/time"
)

// Error codes carried in server/error
const (
	ErrDuplicateID  = "duplicate_client_id"
	ErrInvalidHello = "invalid_hello"
)

// Codecs
const (
	CodecPCM  = "pcm"
	CodecOpus = "opus"
)

const (
	ProtocolVersion = 1

	// DefaultPath is the websocket endpoint path
	DefaultPath = "/capture"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID        string      `json:"client_id"`
	Name            string      `json:"name"`
	Version         int         `json:"version"`
	SupportedCodecs []string    `json:"supported_codecs,omitempty"`
	DeviceInfo      *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Protocol int    `json:"protocol"`
}

// ServerError reports a rejected request before the server closes the connection
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StreamStart notifies the client of the frame format
type StreamStart struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth"`
	FrameSize  int    `json:"frame_size"`
}

// StreamEnd tells the client no further frames will follow
type StreamEnd struct {
	Reason string `json:"reason,omitempty"`
}

// StreamMetadata describes the capture source
type StreamMetadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

// ClientState reports listener health (sent as client/state)
type ClientState struct {
	State          string `json:"state"` // "listening" or "idle"
	FramesReceived uint64 `json:"frames_received"`
	FramesLost     uint64 `json:"frames_lost"`
}

// ClientTime is sent for clock offset estimation
type ClientTime struct {
	ClientTransmitted int64 `json:"client_transmitted"` // Client timestamp in microseconds
}

// ServerTime is the response to client/time
type ServerTime struct {
	ClientTransmitted int64 `json:"client_transmitted"` // Echoed client timestamp
	ServerReceived    int64 `json:"server_received"`    // Server receive timestamp
	ServerTransmitted int64 `json:"server_transmitted"` // Server send timestamp
}
