package config

import "fmt"

type ServiceConfig struct {
	Name        string         `yaml:"name"`
	Environment string         `yaml:"environment"`
	Version     string         `yaml:"version"`
	BaseURL     string         `yaml:"base_url"`
	ClientURL   string         `yaml:"client_url"`
	JWTSecret   string         `yaml:"jwt_secret"`
	Fawaterk    FawaterkConfig `yaml:"fawaterk"`
	Queue       QueueConfig    `yaml:"queue"`
}

type FawaterkConfig struct {
	APIBaseURL    string `yaml:"api_base_url"`
	APIKey        string `yaml:"api_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type QueueConfig struct {
	Name   string `yaml:"name"`
	Secret string `yaml:"secret"`
}

// Validate checks the secrets the service cannot run without.
func (c *ServiceConfig) Validate() error {
	if c.Fawaterk.WebhookSecret == "" {
		return fmt.Errorf("service config: fawaterk webhook secret is required")
	}
	if c.Queue.Secret == "" {
		return fmt.Errorf("service config: queue secret is required")
	}
	return nil
}

// QueueName returns the configured queue list name or the default.
func (c *ServiceConfig) QueueName() string {
	if c.Queue.Name == "" {
		return "donation_queue"
	}
	return c.Queue.Name
}
