// Package config defines the configuration of an EcoBlock node, the default
// values, and the location of the files it keeps in its data directory.
package config
