package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var errNoStorageKey = errors.New("token storage key is not set")

// tokenInfo describes the stored token. Claims are decoded without verifying the
// signature, so they are informational only.
type tokenInfo struct {
	Key       string         `json:"key"`
	File      string         `json:"file"`
	Token     string         `json:"token"`
	Claims    map[string]any `json:"claims,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Expired   bool           `json:"expired,omitempty"`
}

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Show, set or clear the stored access token",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	tokenCmd.AddCommand(newTokenShowCmd())
	tokenCmd.AddCommand(newTokenSetCmd())
	tokenCmd.AddCommand(newTokenClearCmd())
	return tokenCmd
}

func storageKey() (string, error) {
	key := active.client.Settings().StorageKey()
	if key == "" {
		return "", errNoStorageKey
	}
	return key, nil
}

func newTokenShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored token and, for a JWT, its claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := storageKey()
			if err != nil {
				return err
			}
			value, ok, err := active.store.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no token stored under %s", key)
			}

			info := inspectToken(value, time.Now())
			info.Key = key
			info.File = active.store.Path()

			out := cmd.OutOrStdout()
			if jsonOutput {
				printJSON(out, info)
				return nil
			}
			fmt.Fprintf(out, "Key:   %s\n", info.Key)
			fmt.Fprintf(out, "File:  %s\n", info.File)
			fmt.Fprintf(out, "Token: %s\n", info.Token)
			if info.ExpiresAt != nil {
				status := "valid"
				if info.Expired {
					status = "expired"
				}
				fmt.Fprintf(out, "Expires: %s (%s)\n", info.ExpiresAt.Format(time.RFC3339), status)
			}
			if len(info.Claims) > 0 {
				claims, err := yaml.Marshal(info.Claims)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Claims:\n%s", indent(string(claims)))
			}
			return nil
		},
	}
}

func newTokenSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set TOKEN",
		Short: "Store a token to send with every request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := storageKey()
			if err != nil {
				return err
			}
			if err := active.store.Set(cmd.Context(), key, args[0]); err != nil {
				return err
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]int{"result": 1})
			} else {
				okLabel.Fprintf(cmd.OutOrStdout(), "[OK] ")
				fmt.Fprintf(cmd.OutOrStdout(), "Token stored under %s\n", key)
			}
			return nil
		},
	}
}

func newTokenClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := storageKey()
			if err != nil {
				return err
			}
			if err := active.store.Delete(cmd.Context(), key); err != nil {
				return err
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]int{"result": 1})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Token cleared\n")
			}
			return nil
		},
	}
}

// inspectToken decodes value as a JWT when it is one. Opaque tokens are returned with
// no claims.
func inspectToken(value string, now time.Time) tokenInfo {
	info := tokenInfo{Token: value}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(value, claims); err != nil {
		return info
	}
	info.Claims = claims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
		info.Expired = now.After(t)
	}
	return info
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ") + "\n"
}
