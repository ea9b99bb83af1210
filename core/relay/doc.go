// Package relay implements the relay state machine and the trigger policies
// that decide when a relay is switched.
//
// A TimedRelay owns the last commanded RelayState and publishes every command
// through an mqtt.Publisher. The caller invokes Process on a fixed cadence;
// the configured Trigger decides whether the relay flips, and when it does not
// the relay re-publishes its position every refresh interval so that a device
// which missed a fire-and-forget message converges on the next refresh.
//
// Triggers are pure policy objects: FixedInterval toggles after a constant
// delay, PercentDutyCycle keeps the relay on for a fraction of an interval and
// ScheduledHours follows the hour of day. They read time from an injected
// Clock so tests can drive them deterministically.
package relay
