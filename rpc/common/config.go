package common

import (
	"fmt"
	"strings"
	"time"
)

// ServerConfig holds everything rpc/server and cmd/server need to start a
// mapkv server.
type ServerConfig struct {
	// Address is the TCP listen address, e.g. ":9999" or "127.0.0.1:9999".
	Address string
	// StoragePath is the path to the memory-mapped storage file.
	StoragePath string
	// StatsInterval is how often Stats.Print runs.
	StatsInterval time.Duration
	// LogLevel gates the server's leveled logger.
	LogLevel string
}

// String returns a formatted, human-readable rendering of the
// configuration, in the same section/field layout used throughout mapkv's
// startup banners.
func (c ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Server")
	addField("Address", c.Address)
	addField("Storage Path", c.StoragePath)
	addField("Stats Interval", c.StatsInterval.String())

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// ClientConfig holds everything rpc/client and cmd/client need to talk to a
// mapkv server.
type ClientConfig struct {
	// Endpoint is the server's TCP address.
	Endpoint string
	// TimeoutSecond bounds how long a single Send waits for I/O.
	TimeoutSecond int
}

// String returns a formatted, human-readable rendering of the
// configuration.
func (c ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	return sb.String()
}
