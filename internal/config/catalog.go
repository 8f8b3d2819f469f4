package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"genzip/internal/models"
)

// Catalog holds the commercial settings: subscription plans, the
// pay-per-interview price and the agent payout.
type Catalog struct {
	Currency             string        `toml:"currency"`
	PayPerInterviewPrice float64       `toml:"pay_per_interview_price"`
	AgentPayout          float64       `toml:"agent_payout"`
	SubscriptionDays     int           `toml:"subscription_days"`
	Plans                []models.Plan `toml:"plans"`
}

// DefaultCatalog returns the built-in plan catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Currency:             "inr",
		PayPerInterviewPrice: 2000,
		AgentPayout:          500,
		SubscriptionDays:     30,
		Plans: []models.Plan{
			{Name: "Starter", Price: 49999, Credits: 20, Bonus: 3, FreeKM: 5},
			{Name: "Pro", Price: 99999, Credits: 50, Bonus: 8, FreeKM: 10, Tag: "Most Popular"},
			{Name: "Enterprise", Price: 199999, Credits: 100, Bonus: 20, FreeKM: 15},
		},
	}
}

// LoadCatalog loads the catalog from a TOML file. Missing fields keep
// their defaults.
func LoadCatalog(filename string) (*Catalog, error) {
	catalog := DefaultCatalog()
	if _, err := toml.DecodeFile(filename, catalog); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return catalog, nil
}

// Plan looks a plan up by name, case-insensitively.
func (c *Catalog) Plan(name string) (models.Plan, bool) {
	for _, p := range c.Plans {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return models.Plan{}, false
}

func (c *Catalog) Validate() error {
	if len(c.Plans) == 0 {
		return errors.New("plan catalog is empty")
	}
	if c.PayPerInterviewPrice <= 0 {
		return errors.New("pay_per_interview_price must be positive")
	}
	if c.SubscriptionDays <= 0 {
		return errors.New("subscription_days must be positive")
	}
	seen := make(map[string]bool, len(c.Plans))
	for _, p := range c.Plans {
		key := strings.ToLower(p.Name)
		if key == "" {
			return errors.New("plan name is required")
		}
		if seen[key] {
			return fmt.Errorf("duplicate plan %q", p.Name)
		}
		seen[key] = true
		if p.Price <= 0 || p.Credits <= 0 || p.Bonus < 0 {
			return fmt.Errorf("plan %q has invalid price or credits", p.Name)
		}
	}
	return nil
}
