package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/tansive/restdb/internal/common/apperrors"
	"github.com/tansive/restdb/internal/common/envtmpl"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written into new settings files.
const FormatVersion = "0.1.0"

var supportedFormats = mustConstraint("^0.1")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// FileConfig is the on-disk representation of Settings.
type FileConfig struct {
	FormatVersion string        `mapstructure:"format_version" validate:"required"`
	BaseURL       string        `mapstructure:"base_url"`
	ContentType   string        `mapstructure:"content_type"`
	StorageName   string        `mapstructure:"storage_name"`
	TokenName     string        `mapstructure:"token_name"`
	TokenType     string        `mapstructure:"token_type"`
	TokenFile     string        `mapstructure:"token_file"`
	Routes        []RouteConfig `mapstructure:"routes" validate:"dive"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Parse decodes a settings document. format is "toml", "yaml" or "yml".
func Parse(data []byte, format string) (*FileConfig, error) {
	raw := map[string]any{}
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, apperrors.ErrInvalidConfig.MsgErr("unable to parse toml settings", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, apperrors.ErrInvalidConfig.MsgErr("unable to parse yaml settings", err)
		}
	default:
		return nil, apperrors.ErrUnsupportedFormat.Msg(fmt.Sprintf("unsupported settings format %q", format))
	}

	var cfg FileConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, apperrors.ErrInvalidConfig.MsgErr("unable to decode settings", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields, the format version and route name uniqueness.
func (c *FileConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return apperrors.ErrInvalidConfig.Msg(strings.Join(msgs, "; "))
		}
		return apperrors.ErrInvalidConfig.Err(err)
	}

	v, err := semver.NewVersion(c.FormatVersion)
	if err != nil {
		return apperrors.ErrInvalidConfig.MsgErr(fmt.Sprintf("invalid format_version %q", c.FormatVersion), err)
	}
	if !supportedFormats.Check(v) {
		return apperrors.ErrInvalidConfig.Msg(fmt.Sprintf("unsupported format_version %s", c.FormatVersion))
	}

	seen := make(map[string]struct{}, len(c.Routes))
	for _, r := range c.Routes {
		if _, ok := seen[r.Name]; ok {
			return apperrors.ErrInvalidConfig.Msg(fmt.Sprintf("duplicate route %q", r.Name))
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// Apply copies the non-empty values and every route into s.
func (c *FileConfig) Apply(s *Settings) {
	if c.BaseURL != "" {
		s.SetBaseURL(c.BaseURL)
	}
	if c.ContentType != "" {
		s.SetContentType(c.ContentType)
	}
	if c.StorageName != "" {
		s.SetStorageName(c.StorageName)
	}
	s.SetTokenAttribute(AttrTokenName, c.TokenName)
	s.SetTokenAttribute(AttrTokenType, c.TokenType)
	for _, r := range c.Routes {
		s.Register(r.Name, r)
	}
}

// LoadFile reads, env-expands and parses the settings file at path and returns fresh
// Settings populated from it. The format follows the file extension.
func LoadFile(path string) (*Settings, *FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to read settings file %s", path)
	}
	data, err = envtmpl.Expand(data, filepath.Dir(path))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to expand settings file %s", path)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, nil, err
	}
	s := New()
	cfg.Apply(s)
	return s, cfg, nil
}
