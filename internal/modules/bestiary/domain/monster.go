package domain

import (
	"fmt"
	"strings"
)

// TriggerEvent names a host event that feeds a monster independently of the
// foreground site.
type TriggerEvent string

const (
	// TriggerTabSwitch heals the monster when the foreground tab changes.
	TriggerTabSwitch TriggerEvent = "tab_switch"
)

func (e TriggerEvent) Validate() error {
	switch e {
	case "", TriggerTabSwitch:
		return nil
	default:
		return fmt.Errorf("unknown trigger event: %s", e)
	}
}

// Monster is a static catalog entry. HP doubles as the default session
// duration in seconds, so 1 HP is roughly one second of undisturbed focus.
type Monster struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Icon         string       `yaml:"icon"`
	Description  string       `yaml:"description"`
	HP           int          `yaml:"hp"`
	TriggerSites []string     `yaml:"trigger_sites,omitempty"`
	TriggerEvent TriggerEvent `yaml:"trigger_event,omitempty"`
}

func (m Monster) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("monster id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("monster %s: name is required", m.ID)
	}
	if m.HP <= 0 {
		return fmt.Errorf("monster %s: hp must be positive", m.ID)
	}
	if err := m.TriggerEvent.Validate(); err != nil {
		return fmt.Errorf("monster %s: %w", m.ID, err)
	}
	return nil
}

// MatchTriggerSite reports whether hostname matches one of the monster's
// trigger sites. Matching is substring-based on the hostname only and
// case-insensitive.
func (m Monster) MatchTriggerSite(hostname string) (string, bool) {
	if hostname == "" {
		return "", false
	}
	host := strings.ToLower(hostname)
	for _, site := range m.TriggerSites {
		if site != "" && strings.Contains(host, strings.ToLower(site)) {
			return site, true
		}
	}
	return "", false
}
