// Package command turns recognized speech into a closed set of dashboard
// intents. Voice and pointer input share the same intents downstream.
package command

import "fmt"

// Intent is a normalized action identifier
type Intent int

const (
	IntentUnknown Intent = iota
	IntentShowIncome
	IntentShowExpenses
	IntentOpenCompliance
	IntentOpenAdvisor
	IntentSwitchScenarioA
	IntentSwitchScenarioB
	IntentSwitchScenarioC
	IntentSync

	intentCount
)

var intentNames = [intentCount]string{
	IntentUnknown:         "unknown",
	IntentShowIncome:      "show-income",
	IntentShowExpenses:    "show-expenses",
	IntentOpenCompliance:  "open-compliance",
	IntentOpenAdvisor:     "open-advisor",
	IntentSwitchScenarioA: "switch-scenario-a",
	IntentSwitchScenarioB: "switch-scenario-b",
	IntentSwitchScenarioC: "switch-scenario-c",
	IntentSync:            "sync",
}

func (i Intent) String() string {
	if i < 0 || i >= intentCount {
		return fmt.Sprintf("intent(%d)", int(i))
	}
	return intentNames[i]
}

// IsKnown reports whether i is an actionable intent
func (i Intent) IsKnown() bool {
	return i > IntentUnknown && i < intentCount
}

// MarshalText renders the kebab-case name
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText accepts the kebab-case name
func (i *Intent) UnmarshalText(b []byte) error {
	parsed, err := ParseIntent(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ParseIntent is the inverse of String
func ParseIntent(name string) (Intent, error) {
	for i, n := range intentNames {
		if n == name {
			return Intent(i), nil
		}
	}
	return IntentUnknown, fmt.Errorf("unknown intent %q", name)
}

// AllIntents lists every actionable intent
func AllIntents() []Intent {
	out := make([]Intent, 0, intentCount-1)
	for i := IntentUnknown + 1; i < intentCount; i++ {
		out = append(out, i)
	}
	return out
}
