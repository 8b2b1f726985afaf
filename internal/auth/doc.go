// Package auth enforces API key authentication on incoming HTTP
// requests. The key is compared in constant time against the value
// configured through the environment.
package auth
