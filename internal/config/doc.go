// Package config manages deployment settings stored at ~/.plughub/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the plugins root directory, the git executable, and the HTTP listen address.
package config
