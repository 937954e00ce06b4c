// Package logger wraps zap for the deployer's console output:
//   - a global sugared logger with a console encoder on stdout,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and adjustment,
//   - context-first convenience functions (Infof, ErrorKV, etc.).
//
// Every step of the workflow receives a context and logs through the
// logger stored in it, so step names and asset paths travel with each line.
package logger
