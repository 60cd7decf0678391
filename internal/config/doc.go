// Package config provides configuration structures and utilities for
// linisreport: default audit locations, XDG directory resolution, and the
// optional .linisreport YAML file for extra search directories.
package config
