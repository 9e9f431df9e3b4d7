package config

import (
	"fmt"
	"strings"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

const exampleJWTSecret = "CHANGE_THIS_SECRET_KEY_BEFORE_USE"

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if database.NormalizeDriver(c.Database.Driver) == "" {
		add("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.GetDSN() == "" {
		add("database connection settings are empty")
	}
	if _, err := c.App.Location(); err != nil {
		add("app.timezone: %v", err)
	}
	if _, err := ticketquery.ParseMatchMode(c.TicketList.AssigneeMatch); err != nil {
		add("ticket_list.assignee_match: %v", err)
	}
	if c.TicketList.LookupConcurrency < 0 {
		add("ticket_list.lookup_concurrency must not be negative")
	}
	if c.TicketList.QueryTimeout < 0 {
		add("ticket_list.query_timeout must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		add("logging.format %q must be json or text", c.Logging.Format)
	}

	secret := c.Auth.JWT.Secret
	switch {
	case secret == "":
		add("auth.jwt.secret is not set")
	case c.App.IsProduction() && secret == exampleJWTSecret:
		add("auth.jwt.secret is using the example value")
	case c.App.IsProduction() && len(secret) < 32:
		add("auth.jwt.secret must be at least 32 characters in production")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
