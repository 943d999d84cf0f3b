// Package process exposes local executables as data sources, so a tool
// registry can reach systems that only have a CLI.
package process
