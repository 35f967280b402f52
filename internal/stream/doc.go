// Package stream feeds JSON-lines notification streams to a collector.
//
// A stream holds one collector.Notification per line. Blank lines and lines
// starting with '#' are skipped:
//
//	{"kind":"run_start"}
//	{"kind":"scenario_start","id":"scenarios/login.yaml","name":"login"}
//	{"kind":"step_start","title":"open the login page"}
//	{"kind":"step_end","status":"passed"}
//	{"kind":"scenario_end","status":"passed"}
//	{"kind":"run_end"}
//
// Replay consumes a complete stream from any reader. Follow tails a file
// that is still being written by the host framework, using fsnotify, until a
// run_end notification arrives or the context is cancelled.
package stream
