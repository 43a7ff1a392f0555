package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the relayer configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Source      SourceConfig      `mapstructure:"source"`
	Destination DestinationConfig `mapstructure:"destination"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host        string        `mapstructure:"host" default:"0.0.0.0"`
	Port        int           `mapstructure:"port" default:"8080"`
	ReadTimeout time.Duration `mapstructure:"read_timeout" default:"15s"`
	// A relay run can spend two full receipt-timeout windows on chain RPC,
	// so the write and request timeouts must cover both plus slack.
	WriteTimeout    time.Duration `mapstructure:"write_timeout" default:"7m"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" default:"60s"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" default:"6m30s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"30s"`
}

// SourceConfig contains source-chain client settings. The relayer only reads
// from the source chain: it waits for receipts of user transactions against
// the source bridge contract.
type SourceConfig struct {
	RPCURL          string        `mapstructure:"rpc_url" validate:"required,url"`
	BridgeContract  string        `mapstructure:"bridge_contract" validate:"required,eth_addr"`
	Confirmations   uint64        `mapstructure:"confirmations" default:"1"`
	ReceiptTimeout  time.Duration `mapstructure:"receipt_timeout" default:"180s"`
	PollingInterval time.Duration `mapstructure:"polling_interval" default:"1500ms"`
}

// DestinationConfig contains destination-chain client settings, including the
// relayer signing credential used for mint submissions.
type DestinationConfig struct {
	RPCURL            string        `mapstructure:"rpc_url" validate:"required,url"`
	BridgeContract    string        `mapstructure:"bridge_contract" validate:"required,eth_addr"`
	ChainID           uint64        `mapstructure:"chain_id" validate:"required"`
	RelayerPrivateKey string        `mapstructure:"relayer_private_key" validate:"required"`
	Confirmations     uint64        `mapstructure:"confirmations" default:"1"`
	ReceiptTimeout    time.Duration `mapstructure:"receipt_timeout" default:"180s"`
	PollingInterval   time.Duration `mapstructure:"polling_interval" default:"1500ms"`
	GasLimit          uint64        `mapstructure:"gas_limit"`
	MaxGasPrice       string        `mapstructure:"max_gas_price"`
}

// StorageConfig selects the transfer ledger backend
type StorageConfig struct {
	Driver   string         `mapstructure:"driver" default:"memory" validate:"oneof=memory postgres"`
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig contains Postgres connection settings, used when the
// storage driver is "postgres"
type DatabaseConfig struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"5432"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" default:"bridge_relayer"`
	SSLMode  string `mapstructure:"ssl_mode" default:"disable"`
}

// MonitoringConfig contains metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" default:"info"`
	Format     string `mapstructure:"format" default:"json"`
	OutputPath string `mapstructure:"output_path" default:"stdout"`
}

// Load loads configuration from file and environment variables. Missing or
// malformed settings fail here, before any chain client is dialed.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// The signing key normally arrives through the environment rather than
	// the config file.
	_ = v.BindEnv("destination.relayer_private_key", "RELAYER_PRIVATE_KEY")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := defaults.Set(&config); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func validate(config *Config) error {
	v := validator.New()
	if err := v.Struct(config); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("field %s failed %q validation", e.Namespace(), e.Tag())
		}
		return err
	}

	if config.Storage.Driver == "postgres" {
		if config.Storage.Database.Host == "" {
			return fmt.Errorf("storage.database.host is required for the postgres driver")
		}
		if config.Storage.Database.User == "" {
			return fmt.Errorf("storage.database.user is required for the postgres driver")
		}
	}

	return nil
}
