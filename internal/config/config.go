// Package config loads taccd runtime configuration from TOML files
// and environment overrides. The resulting struct is built once at
// process start and handed to component constructors; request handlers
// never read ambient state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL      = "http://127.0.0.1:5555"
	DefaultDBFileName  = ".taccd.db"
	DefaultDataDirName = "taccd-data"
	DefaultLogLevel    = "info"
	DefaultUploadField = "file"
	DefaultCaptchaURL  = "https://www.google.com/recaptcha/api/siteverify"

	DefaultCaptchaScore        = 0.5
	DefaultCaptchaAction       = "read_data"
	DefaultSuspicionTTLMinutes = 15
	DefaultTokenValidityHours  = 24
	DefaultTokenSweepHours     = 24
	DefaultUploadMaxFiles      = 5
	DefaultUploadMaxFileBytes  = 5 * 1024 * 1024
	DefaultMultipartMaxMemory  = 8 * 1024 * 1024

	configDirEnvKey = "TACCD_CONFIG_DIR"
)

// GateConfig holds the access gate settings.
type GateConfig struct {
	BypassSecretHash string  `toml:"bypass_secret_hash"`
	CaptchaVerifyURL string  `toml:"captcha_verify_url"`
	CaptchaSecret    string  `toml:"captcha_secret"`
	CaptchaAction    string  `toml:"captcha_action"`
	CaptchaMinScore  float64 `toml:"captcha_min_score"`
	SuspicionTTLMin  int     `toml:"suspicion_ttl_minutes"`
}

// TokenConfig holds access-token ledger settings.
type TokenConfig struct {
	ValidityHours      int `toml:"validity_hours"`
	SweepIntervalHours int `toml:"sweep_interval_hours"`
}

// MailConfig holds outbound SMTP settings for token delivery.
type MailConfig struct {
	SMTPAddr string `toml:"smtp_addr"`
	From     string `toml:"from"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// UploadConfig holds complaint file upload limits.
type UploadConfig struct {
	MaxFiles           int   `toml:"max_files"`
	MaxFileBytes       int64 `toml:"max_file_bytes"`
	MultipartMaxMemory int64 `toml:"multipart_max_memory"`
}

// Config defines runtime configuration for taccd.
type Config struct {
	APIURL          string       `toml:"api_url"`
	DBPath          string       `toml:"db_path"`
	DataDir         string       `toml:"data_dir"`
	APIKey          string       `toml:"api_key"`
	FileUploadField string       `toml:"file_upload_field"`
	LogLevel        string       `toml:"log_level"`
	Gate            GateConfig   `toml:"gate"`
	Tokens          TokenConfig  `toml:"tokens"`
	Mail            MailConfig   `toml:"mail"`
	Uploads         UploadConfig `toml:"uploads"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:          DefaultAPIURL,
		FileUploadField: DefaultUploadField,
		LogLevel:        DefaultLogLevel,
		Gate: GateConfig{
			CaptchaVerifyURL: DefaultCaptchaURL,
			CaptchaAction:    DefaultCaptchaAction,
			CaptchaMinScore:  DefaultCaptchaScore,
			SuspicionTTLMin:  DefaultSuspicionTTLMinutes,
		},
		Tokens: TokenConfig{
			ValidityHours:      DefaultTokenValidityHours,
			SweepIntervalHours: DefaultTokenSweepHours,
		},
		Uploads: UploadConfig{
			MaxFiles:           DefaultUploadMaxFiles,
			MaxFileBytes:       DefaultUploadMaxFileBytes,
			MultipartMaxMemory: DefaultMultipartMaxMemory,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, ".taccd.toml"), true
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"data_dir",
	"api_key",
	"file_upload_field",
	"log_level",
	"gate.bypass_secret_hash",
	"gate.captcha_verify_url",
	"gate.captcha_secret",
	"gate.captcha_action",
	"gate.captcha_min_score",
	"gate.suspicion_ttl_minutes",
	"tokens.validity_hours",
	"tokens.sweep_interval_hours",
	"mail.smtp_addr",
	"mail.from",
	"mail.username",
	"mail.password",
	"uploads.max_files",
	"uploads.max_file_bytes",
	"uploads.multipart_max_memory",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "data_dir":
		return c.DataDir, nil
	case "api_key":
		return c.APIKey, nil
	case "file_upload_field":
		return c.FileUploadField, nil
	case "log_level":
		return c.LogLevel, nil
	case "gate.bypass_secret_hash":
		return c.Gate.BypassSecretHash, nil
	case "gate.captcha_verify_url":
		return c.Gate.CaptchaVerifyURL, nil
	case "gate.captcha_secret":
		return c.Gate.CaptchaSecret, nil
	case "gate.captcha_action":
		return c.Gate.CaptchaAction, nil
	case "gate.captcha_min_score":
		return strconv.FormatFloat(c.Gate.CaptchaMinScore, 'f', -1, 64), nil
	case "gate.suspicion_ttl_minutes":
		return strconv.Itoa(c.Gate.SuspicionTTLMin), nil
	case "tokens.validity_hours":
		return strconv.Itoa(c.Tokens.ValidityHours), nil
	case "tokens.sweep_interval_hours":
		return strconv.Itoa(c.Tokens.SweepIntervalHours), nil
	case "mail.smtp_addr":
		return c.Mail.SMTPAddr, nil
	case "mail.from":
		return c.Mail.From, nil
	case "mail.username":
		return c.Mail.Username, nil
	case "mail.password":
		return c.Mail.Password, nil
	case "uploads.max_files":
		return strconv.Itoa(c.Uploads.MaxFiles), nil
	case "uploads.max_file_bytes":
		return strconv.FormatInt(c.Uploads.MaxFileBytes, 10), nil
	case "uploads.multipart_max_memory":
		return strconv.FormatInt(c.Uploads.MultipartMaxMemory, 10), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taccd.toml"), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from the global file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		if err := loadFile(filepath.Join(home, ".taccd.toml"), &cfg); err != nil {
			return nil, err
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}
	if cfg.DataDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DataDir = filepath.Join(cwd, DefaultDataDirName)
		}
	}

	if apiURL := os.Getenv("TACCD_API_URL"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv("TACCD_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if dataDir := os.Getenv("TACCD_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if apiKey := os.Getenv("TACCD_API_KEY"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	if field := os.Getenv("TACCD_FILE_UPLOAD_FIELD"); field != "" {
		cfg.FileUploadField = field
	}
	if secret := os.Getenv("TACCD_CAPTCHA_SECRET"); secret != "" {
		cfg.Gate.CaptchaSecret = secret
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "gate.captcha_min_score":
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return nil, fmt.Errorf("%s must be a number between 0 and 1", key)
		}
		return parsed, nil
	case "gate.suspicion_ttl_minutes", "tokens.validity_hours",
		"tokens.sweep_interval_hours", "uploads.max_files":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "uploads.max_file_bytes", "uploads.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalizeDefaults() {
	if c.FileUploadField == "" {
		c.FileUploadField = DefaultUploadField
	}
	if c.Gate.CaptchaVerifyURL == "" {
		c.Gate.CaptchaVerifyURL = DefaultCaptchaURL
	}
	if c.Gate.CaptchaAction == "" {
		c.Gate.CaptchaAction = DefaultCaptchaAction
	}
	if c.Gate.CaptchaMinScore <= 0 || c.Gate.CaptchaMinScore > 1 {
		c.Gate.CaptchaMinScore = DefaultCaptchaScore
	}
	if c.Gate.SuspicionTTLMin <= 0 {
		c.Gate.SuspicionTTLMin = DefaultSuspicionTTLMinutes
	}
	if c.Tokens.ValidityHours <= 0 {
		c.Tokens.ValidityHours = DefaultTokenValidityHours
	}
	if c.Tokens.SweepIntervalHours <= 0 {
		c.Tokens.SweepIntervalHours = DefaultTokenSweepHours
	}
	if c.Uploads.MaxFiles <= 0 {
		c.Uploads.MaxFiles = DefaultUploadMaxFiles
	}
	if c.Uploads.MaxFileBytes <= 0 {
		c.Uploads.MaxFileBytes = DefaultUploadMaxFileBytes
	}
	if c.Uploads.MultipartMaxMemory <= 0 {
		c.Uploads.MultipartMaxMemory = DefaultMultipartMaxMemory
	}
}
