package config

// Nats represents config settings for NATS
type Nats struct {
	IsEnabled bool   `toml:"enabled" desc:"Publish notifications to NATS"`
	Host      string `toml:"host" desc:"NATS server address"`
	Subject   string `toml:"subject" desc:"Subject notifications are published on"`
}

// Verify checks if config looks valid
func (c *Nats) Verify() error {
	if !c.IsEnabled {
		return nil
	}
	if c.Host == "" {
		c.Host = "127.0.0.1:4222"
	}
	if c.Subject == "" {
		c.Subject = "replyquote.notify"
	}
	return nil
}
