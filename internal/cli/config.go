package cli

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tansive/restdb/internal/settings"
	"github.com/tansive/restdb/internal/tokenstore"
	"github.com/tansive/restdb/pkg/restdb"
)

const (
	// DefaultConfigFile is the default name of the settings file
	DefaultConfigFile = "config.toml"
	// DefaultTokenFile is the token file used when the settings name none
	DefaultTokenFile = "tokens.yaml"
)

// session holds what a single CLI invocation works with.
type session struct {
	configPath string
	file       *settings.FileConfig
	store      *tokenstore.FileStore
	client     *restdb.Client
}

var active *session

// GetDefaultConfigPath returns the default path for the settings file
// It uses the OS-specific config directory (e.g., ~/.config/restdb on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, "restdb", DefaultConfigFile), nil
}

// tokenFilePath resolves the token file named in the settings. A relative path is
// taken relative to the settings file.
func tokenFilePath(configPath string, cfg *settings.FileConfig) string {
	p := cfg.TokenFile
	if p == "" {
		p = DefaultTokenFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

func openSession(configPath string) (*session, error) {
	s, cfg, err := settings.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	store, err := tokenstore.NewFileStore(tokenFilePath(configPath, cfg))
	if err != nil {
		return nil, err
	}

	opts := []restdb.Option{
		restdb.WithSettings(s),
		restdb.WithStore(store),
		restdb.WithLogger(log.Logger),
	}
	if insecure {
		opts = append(opts, restdb.WithInsecureSkipVerify())
	}
	return &session{
		configPath: configPath,
		file:       cfg,
		store:      store,
		client:     restdb.New(opts...),
	}, nil
}
