package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/infrastructure/orderapi"
)

type remoteFlags struct {
	url   string
	token string
}

func addRemoteFlags(cmd *cobra.Command, f *remoteFlags) {
	cmd.Flags().StringVar(&f.url, "url", "", "server URL (default from config)")
	cmd.Flags().StringVar(&f.token, "token", "", "session token (default $CAFE_TOKEN)")
}

// client builds an API client; authed commands need a token.
func (f *remoteFlags) client(opts *RootOptions, authed bool) (*orderapi.Client, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	c := &orderapi.Client{BaseURL: cfg.RemoteURL, Token: f.token}
	if f.url != "" {
		c.BaseURL = f.url
	}
	if c.Token == "" {
		c.Token = strings.TrimSpace(os.Getenv("CAFE_TOKEN"))
	}
	if authed && c.Token == "" {
		return nil, NewExitError(ExitCommandError, "no session token: run `cafe-orders login <role>` and set CAFE_TOKEN or pass --token")
	}
	return c, nil
}

// apiFailure keeps server rejections at ExitFailure and transport failures at
// ExitCommandError.
func apiFailure(message string, err error) error {
	var apiErr *orderapi.APIError
	if errors.As(err, &apiErr) || domain.ErrorCode(err) != "" {
		return WrapExitError(ExitFailure, message, err)
	}
	return WrapExitError(ExitCommandError, message, err)
}
