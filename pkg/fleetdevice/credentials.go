package fleetdevice

// Credentials holds SSH login material for a collection/reconciliation run.
// Process-lifetime only: never persisted, never logged
// Passed by value: collect.Options and the pipeline RunContext each hold
// their own copy.
type Credentials struct {
	Username     string
	Password     string
	EnableSecret string
}

// String deliberately does not include Password or EnableSecret, so an
// accidental %v or %+v on a Credentials value (e.g. from an over-eager log
// call) never leaks the secret.
func (c Credentials) String() string {
	return "Credentials{Username: " + c.Username + "}"
}
