package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	AES        AESConfig        `mapstructure:"aes"`
	Log        LogConfig        `mapstructure:"log"`
	Governance GovernanceConfig `mapstructure:"governance"`
	Invoker    InvokerConfig    `mapstructure:"invoker"`
	Genesis    GenesisConfig    `mapstructure:"genesis"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"` // false: run without durable snapshots (dev only)
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// GovernanceConfig controls the engine identity and host-side scheduling.
type GovernanceConfig struct {
	// SelfPrincipal is the engine's own identity. Parameter and state
	// overrides are honoured only when issued by this principal.
	SelfPrincipal    string        `mapstructure:"self_principal"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
}

// InvokerConfig configures outbound proposal execution calls.
type InvokerConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// Targets maps a target principal to the base URL of its host.
	Targets map[string]string `mapstructure:"targets"`
}

// GenesisConfig seeds the governance state on first boot, when the
// snapshot store is empty.
type GenesisConfig struct {
	Params   GenesisParams    `mapstructure:"params"`
	Accounts []GenesisAccount `mapstructure:"accounts"`
	Governor GenesisGovernor  `mapstructure:"governor"`
}

type GenesisParams struct {
	TransferFee       uint64 `mapstructure:"transfer_fee"`
	VoteThreshold     uint64 `mapstructure:"vote_threshold"`
	SubmissionDeposit uint64 `mapstructure:"submission_deposit"`
}

type GenesisAccount struct {
	Principal string `mapstructure:"principal"`
	Tokens    uint64 `mapstructure:"tokens"`
}

// GenesisGovernor is the bootstrap member acting as the engine's own
// principal on the admin surface.
type GenesisGovernor struct {
	Principal string `mapstructure:"principal"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: DAO_.
// Nested keys use underscore: DAO_DATABASE_HOST, DAO_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "dao_governance")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "dao-governance")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("governance.self_principal", "governance-engine")
	v.SetDefault("governance.tick_interval", "10s")
	v.SetDefault("governance.snapshot_interval", "30s")
	v.SetDefault("invoker.timeout", "15s")
	v.SetDefault("genesis.params.transfer_fee", 1)
	v.SetDefault("genesis.params.vote_threshold", 100)
	v.SetDefault("genesis.params.submission_deposit", 10)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: DAO_DATABASE_HOST -> database.host
	v.SetEnvPrefix("DAO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
