package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Config defines the broker connection and retry policy.
type Config struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	Keepalive      time.Duration `json:"keepalive"`
	MaxTries       int           `json:"max_tries"`
	PauseBetween   time.Duration `json:"pause_between"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	ClientID       string        `json:"client_id"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	QoS            byte          `json:"qos"`
	AckTopic       string        `json:"ack_topic"`
	UseTLS         bool          `json:"use_tls"`
	ClientCert     string        `json:"client_cert"`
	ClientKey      string        `json:"client_key"`
	CABundle       string        `json:"ca_bundle"`
	LWTTopic       string        `json:"lwt_topic"`
	LWTPayload     string        `json:"lwt_payload"`
	LWTQoS         byte          `json:"lwt_qos"`
	LWTRetain      bool          `json:"lwt_retain"`
	TLSConfig      *tls.Config   `json:"-"`
}

// Defaults for the connection policy.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 1883
	DefaultKeepalive      = 60 * time.Second
	DefaultMaxTries       = 10
	DefaultPauseBetween   = 5 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Keepalive == 0 {
		c.Keepalive = DefaultKeepalive
	}
	if c.MaxTries == 0 {
		c.MaxTries = DefaultMaxTries
	}
	if c.PauseBetween == 0 {
		c.PauseBetween = DefaultPauseBetween
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ClientID == "" {
		c.ClientID = "relayctl-" + uuid.NewString()[:8]
	}
}

// Validate checks the connection settings.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("mqtt port %d out of range", c.Port)
	}
	if c.MaxTries < 1 {
		return fmt.Errorf("mqtt max_tries must be at least 1, got %d", c.MaxTries)
	}
	if c.PauseBetween < 0 {
		return fmt.Errorf("mqtt pause_between must not be negative")
	}
	if c.QoS > 2 || c.LWTQoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	return nil
}

// BrokerURL returns the paho broker address for Host and Port.
func (c Config) BrokerURL() string {
	scheme := "tcp"
	if c.UseTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// NewClientOptions builds mqtt client options from Config. Retries of the
// initial connection are handled by Connect, so paho's own connect retry is
// off; auto-reconnect stays on to keep an established session alive.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL()).
		SetClientID(cfg.ClientID).
		SetKeepAlive(cfg.Keepalive).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetConnectRetry(false).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("no certificates in %s", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
