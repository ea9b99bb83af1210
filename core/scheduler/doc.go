// Package scheduler previews the commands a relay would publish over a time
// horizon. It drives a real TimedRelay with a simulated clock, so the plan
// follows the same trigger and refresh rules as the control loop. Plans can
// be exported to JSON or CSV with pkg/export.
package scheduler
