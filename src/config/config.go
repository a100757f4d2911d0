// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	_ "embed"
	"encoding/asn1"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	x509ocsp "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/ocsp"
	x509verify "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// EnvConfigFile names the environment variable consulted when no path is given.
const EnvConfigFile = "X509_VERIFIER_CONFIG_FILE"

// Defaults applied before a file is read.
const (
	DefaultTimeoutSeconds   = 10
	DefaultMaxResponseBytes = x509ocsp.DefaultMaxResponseSize
)

//go:embed schema.json
var schema []byte

// Schema returns the JSON schema every configuration document must satisfy.
func Schema() []byte { return append([]byte(nil), schema...) }

var (
	// ErrInvalidConfig is returned when a document fails schema validation.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrInvalidOID is returned for a malformed dotted object identifier.
	ErrInvalidOID = errors.New("config: invalid object identifier")

	// ErrNoCertificates is returned when a certificate file holds nothing.
	ErrNoCertificates = errors.New("config: no certificates in file")
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the verifier configuration shared by the CLI and the MCP server.
type Config struct {
	// Roots lists files holding trusted anchors (PEM, DER or PKCS7).
	// Relative paths are resolved against the configuration file directory.
	Roots []string `json:"roots" yaml:"roots"`

	Chain struct {
		MaxLength                      int      `json:"maxLength" yaml:"maxLength"`
		Strict                         bool     `json:"strict" yaml:"strict"`
		RequiredLeafExtensions         []string `json:"requiredLeafExtensions,omitempty" yaml:"requiredLeafExtensions,omitempty"`
		RequiredIntermediateExtensions []string `json:"requiredIntermediateExtensions,omitempty" yaml:"requiredIntermediateExtensions,omitempty"`
	} `json:"chain" yaml:"chain"`

	OCSP struct {
		Disabled         bool   `json:"disabled" yaml:"disabled"`
		TimeoutSeconds   int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		UserAgent        string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
		MaxConcurrent    int    `json:"maxConcurrent" yaml:"maxConcurrent"`
		MaxResponseBytes int64  `json:"maxResponseBytes" yaml:"maxResponseBytes"`
	} `json:"ocsp" yaml:"ocsp"`

	baseDir string
}

// Default returns a configuration with every default applied and no roots.
func Default() *Config {
	c := &Config{}
	c.Chain.MaxLength = x509chain.DefaultMaxLength
	c.OCSP.TimeoutSeconds = DefaultTimeoutSeconds
	c.OCSP.MaxResponseBytes = DefaultMaxResponseBytes
	return c
}

// detectConfigFormat picks the decoder from the file extension.
func detectConfigFormat(path string) configFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// Load reads the configuration at path, or at $X509_VERIFIER_CONFIG_FILE
// when path is empty. With neither set the defaults are returned.
//
// The document is checked against the embedded JSON schema before it is
// decoded, so unknown keys and out-of-range values are rejected.
//
// Parameters:
//   - path: Configuration file (.json, .yaml or .yml), may be empty
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Read, parse or validation failure
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c, err := parse(data, detectConfigFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.baseDir = filepath.Dir(path)

	return c, nil
}

// ParseJSON parses a JSON document. See [Load].
func ParseJSON(data []byte) (*Config, error) { return parse(data, configFormatJSON) }

// ParseYAML parses a YAML document. See [Load].
func ParseYAML(data []byte) (*Config, error) { return parse(data, configFormatYAML) }

// parse validates and decodes data in the given format.
func parse(data []byte, format configFormat) (*Config, error) {
	var loader gojsonschema.JSONLoader
	switch format {
	case configFormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
		loader = gojsonschema.NewGoLoader(doc)
	default:
		if !json.Valid(data) {
			return nil, fmt.Errorf("failed to parse JSON config file: %w", ErrInvalidConfig)
		}
		loader = gojsonschema.NewBytesLoader(data)
	}

	if err := validate(loader); err != nil {
		return nil, err
	}

	c := Default()
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}

	c.applyDefaults()
	return c, nil
}

func validate(doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (c *Config) applyDefaults() {
	if c.Chain.MaxLength <= 0 {
		c.Chain.MaxLength = x509chain.DefaultMaxLength
	}
	if c.OCSP.TimeoutSeconds <= 0 {
		c.OCSP.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.OCSP.MaxResponseBytes <= 0 {
		c.OCSP.MaxResponseBytes = DefaultMaxResponseBytes
	}
}

// ParseOID parses a dotted object identifier such as "1.2.840.113635.100.6.11.1".
func ParseOID(s string) (asn1.ObjectIdentifier, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
	}

	oid := make(asn1.ObjectIdentifier, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
		}
		oid = append(oid, n)
	}
	if oid[0] > 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOID, s)
	}

	return oid, nil
}

func parseOIDs(in []string) ([]asn1.ObjectIdentifier, error) {
	var out []asn1.ObjectIdentifier
	for _, s := range in {
		oid, err := ParseOID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

// ReadCertificates reads a PEM, DER or PKCS7 file and returns the DER of
// every certificate in it.
func ReadCertificates(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ders, err := x509certs.New().DecodeDER(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(ders) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCertificates, path)
	}

	return ders, nil
}

func (c *Config) resolve(path string) string {
	if c.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

// ToVerifyConfig loads the root files and converts c into the engine's
// per-call configuration.
//
// Parameters:
//   - version: Application version for the OCSP User-Agent
//   - log: Stage logger, may be nil
//
// Returns:
//   - x509verify.Config: Engine configuration
//   - error: Unreadable root file or malformed OID
func (c *Config) ToVerifyConfig(version string, log logger.Logger) (x509verify.Config, error) {
	var roots [][]byte
	for _, path := range c.Roots {
		ders, err := ReadCertificates(c.resolve(path))
		if err != nil {
			return x509verify.Config{}, fmt.Errorf("failed to load roots: %w", err)
		}
		roots = append(roots, ders...)
	}

	leafExts, err := parseOIDs(c.Chain.RequiredLeafExtensions)
	if err != nil {
		return x509verify.Config{}, err
	}
	intermediateExts, err := parseOIDs(c.Chain.RequiredIntermediateExtensions)
	if err != nil {
		return x509verify.Config{}, err
	}

	httpConfig := x509ocsp.NewHTTPConfig(version)
	httpConfig.Timeout = time.Duration(c.OCSP.TimeoutSeconds) * time.Second
	httpConfig.UserAgent = c.OCSP.UserAgent

	return x509verify.Config{
		Roots:                          roots,
		MaxChainLength:                 c.Chain.MaxLength,
		Strict:                         c.Chain.Strict,
		RequiredLeafExtensions:         leafExts,
		RequiredIntermediateExtensions: intermediateExts,
		DisableOnlineChecks:            c.OCSP.Disabled,
		MaxConcurrentChecks:            c.OCSP.MaxConcurrent,
		HTTPConfig:                     httpConfig,
		MaxResponseSize:                c.OCSP.MaxResponseBytes,
		Logger:                         log,
	}, nil
}
