// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - key-value helpers (InfoKV, ErrorKV, etc.).
//
// Services take a context and extract the logger from it, so every program
// processed by ghpm logs with its own scoped fields.
package logger
