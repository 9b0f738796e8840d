// Package main is the entry point for the interpreter server.
//
// The interpreter server executes untrusted user code (Python, Node.js,
// Ruby by default) in short-lived, resource-constrained containers and
// returns the captured, byte-bounded stdout and stderr. Submissions arrive
// over a REST API or, alternatively, over the Model Context Protocol on
// stdio or HTTP.
//
// The application uses Uber's fx framework for dependency injection and lifecycle
// management, with zap for structured logging and viper for configuration.
package main
