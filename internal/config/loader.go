package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadFromPath reads a configuration file and overlays it on the defaults.
// The format is chosen by extension; see the package documentation.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		var cerr *ConfigurationError
		if errors.As(err, &cerr) && cerr.Field == "" {
			cerr.Field = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a configuration document over Default(). ext is the file
// extension used as a format hint (".toml", ".yaml", ".yml", ".json"); an
// empty hint sniffs JSON by its leading brace and otherwise assumes TOML.
//
// Unknown keys and values of the wrong type produce a *ConfigurationError.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	ext = strings.ToLower(ext)
	if ext == "" {
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			ext = ".json"
		} else {
			ext = ".toml"
		}
	}

	switch ext {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, &ConfigurationError{Reason: "malformed TOML", Err: err}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, newError(undecoded[0].String(), nil, "unknown option")
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, &ConfigurationError{Reason: "malformed YAML", Err: err}
		}
	case ".json":
		if err := ApplyJSON(&cfg, data); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, &ConfigurationError{Reason: fmt.Sprintf("unsupported config format %q", ext)}
	}
	return cfg, nil
}

// ApplyJSON overlays the options present in a JSON object onto cfg. It is
// used for per-request overrides where only a few options are supplied.
func ApplyJSON(cfg *Config, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	next := *cfg
	if err := dec.Decode(&next); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ConfigurationError{Field: typeErr.Field, Value: typeErr.Value, Reason: "expected " + typeErr.Type.String(), Err: err}
		}
		return &ConfigurationError{Reason: "malformed JSON", Err: err}
	}
	*cfg = next
	return nil
}

// WriteTOML encodes cfg as a TOML document.
func WriteTOML(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
