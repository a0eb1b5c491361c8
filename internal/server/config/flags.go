package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/bizdesk/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     gRPC bind address (e.g. ":50051")
//	-w string     HTTP bind address (e.g. ":5001")
//	-d string     PostgreSQL DSN
//	-s string     session token signing key
//	-g string     Google OAuth client id
//	-l string     log level
//	-u duration   per-call upstream timeout (e.g. "60s")
//	-t duration   business-chat composition timeout (e.g. "2m")
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// layers (-c) do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-s", "-g", "-l", "-u", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.GoogleClientID, "g", config.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.DurationVar(&config.UpstreamTimeout, "u", config.UpstreamTimeout, "per-call upstream timeout")
	fs.DurationVar(&config.ComposeTimeout, "t", config.ComposeTimeout, "composition timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
