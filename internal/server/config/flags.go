package config

import (
	"flag"
	"os"
	"time"

	"github.com/dberzins/inkwell/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line
// flags. os.Args is filtered to only the flags handled here
// (flagx.FilterArgs), so the JSON-config flags parsed elsewhere do not
// collide.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-t int      session validity, hours
//	-m string   contact form recipient address
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.ContactRecipient, "m", config.ContactRecipient, "contact form recipient")

	sessionValidity := fs.Int("t", 0, "session validity duration (in hours)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only a flag the user actually passed may override the earlier
	// layers; the hour-granular default would otherwise truncate a
	// sub-hour validity configured via JSON or env.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Hour
		}
	})
}
