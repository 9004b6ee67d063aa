// Package logging configures the process-wide zerolog logger.
//
// Console output is the default; JSON output is meant for CI and log
// shippers. An optional log file is rotated by lumberjack and always
// receives JSON lines, whatever the console format.
package logging
