// Package program holds the plain domain types ghpm works with: the configured
// target programs, the release metadata fetched for them, the package-manager
// command descriptors and the error taxonomy shared by all services.
package program
