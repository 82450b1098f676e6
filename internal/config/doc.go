// Package config defines the connection and runtime settings shared by all
// rtctl commands.
//
// Settings are layered: built-in defaults, an optional YAML file, RTCTL_*
// environment variables, and finally command-line flags. [Timeouts] carries
// the request, retry and settle-delay tuning, loaded from the environment
// the same way.
package config
