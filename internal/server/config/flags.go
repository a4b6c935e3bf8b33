package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-o string   external base URL for checkout redirects
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-k string   Stripe secret key
//	-w string   Stripe webhook signing secret
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i string   Gemini API key
//	-m string   Gemini model name
//	-n int      enhancement call timeout, minutes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o", "-d", "-s", "-t", "-k", "-w", "-u", "-p", "-b", "-g", "-e", "-i", "-m", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.BaseURL, "o", config.BaseURL, "external base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.StripeSecretKey, "k", config.StripeSecretKey, "Stripe secret key")
	fs.StringVar(&config.StripeWebhookSecret, "w", config.StripeWebhookSecret, "Stripe webhook signing secret")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.GeminiAPIKey, "i", config.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&config.GeminiModel, "m", config.GeminiModel, "Gemini model")

	enhanceTimeout := fs.Int("n", int(config.EnhanceTimeout.Minutes()), "enhance_timeout (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.EnhanceTimeout = time.Duration(*enhanceTimeout) * time.Minute
}
