// Package config loads everything ghpm reads at start-up:
//   - runtime settings layered by viper (defaults, settings file, GHPM_* env, flags),
//   - the program list (repos.json), each entry validated against an embedded JSON Schema,
//   - the backend registry (TOML), user entries merged over the embedded defaults.
//
// All three are read once and never mutated afterwards.
package config
