// Package serverconfig loads collabd's settings the way the teacher's
// internal/config loads editor settings: layered maps merged
// defaults -> file -> environment, with no command-line flag parsing.
package serverconfig
