package config

import "github.com/kilianp07/relayctl/infra/monitoring"

// SentryConfig defines settings for Sentry error monitoring.
type SentryConfig = monitoring.Config
