package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/apiclient"
	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/money"
	"github.com/DeveloperForam/test-house-design/pkg/logger"
)

const (
	envAPIURL    = "ADMINCTL_API_URL"
	envToken     = "ADMINCTL_TOKEN"
	envTokenFile = "ADMINCTL_TOKEN_FILE"
	envLocale    = "ADMINCTL_LOCALE"
)

// options are the persistent flags shared by every command.
type options struct {
	apiURL    string
	tokenFile string
	locale    string
	timeout   time.Duration
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Manage house bookings and payments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", envOr(envAPIURL, "http://localhost:8080"), "server base URL")
	flags.StringVar(&opts.tokenFile, "token-file", envOr(envTokenFile, defaultTokenFile()), "where the login token is kept")
	flags.StringVar(&opts.locale, "locale", envOr(envLocale, string(money.LocaleIN)), "amount formatting (en-IN or en-US)")
	flags.DurationVar(&opts.timeout, "timeout", apiclient.DefaultTimeout, "per-request timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every API call")

	rootCmd.AddCommand(
		loginCmd(opts),
		logoutCmd(opts),
		hashPasswordCmd(),
		bookingCmd(opts),
		paymentCmd(opts),
	)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".adminctl-token"
	}
	return filepath.Join(dir, "adminctl", "token")
}

func (o *options) logger() *zap.Logger {
	if o.verbose {
		return logger.Must(logger.Options{
			Service:     "adminctl",
			Environment: "development",
			OutputPaths: []string{"stderr"},
		})
	}
	return zap.NewNop()
}

func (o *options) amount(m money.Money) string {
	return money.Format(m, money.ParseLocale(o.locale))
}

// token prefers ADMINCTL_TOKEN over the token file.
func (o *options) token() (string, error) {
	if t := os.Getenv(envToken); t != "" {
		return t, nil
	}
	data, err := os.ReadFile(o.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.New("not logged in, run adminctl login first")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (o *options) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(o.tokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	return os.WriteFile(o.tokenFile, []byte(token+"\n"), 0o600)
}

// client returns an API client authenticated with the saved token.
func (o *options) client() (*apiclient.Client, error) {
	token, err := o.token()
	if err != nil {
		return nil, err
	}
	return apiclient.New(o.apiURL, token, o.timeout, o.logger()), nil
}

// service runs the booking orchestration against the API, so every check the
// console makes before a write also happens here.
func (o *options) service() (*booking.Service, error) {
	c, err := o.client()
	if err != nil {
		return nil, err
	}
	return booking.NewService(c, o.logger()), nil
}
