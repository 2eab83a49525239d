// ABOUTME: Version information for the capture server and tools
// ABOUTME: Reported in server/hello and device info
package version

const (
	// Version is the software version
	Version = "0.3.0"

	// Product is the product name advertised to clients
	Product = "Sendspin Capture"

	// Manufacturer is the software vendor
	Manufacturer = "Sendspin"
)
