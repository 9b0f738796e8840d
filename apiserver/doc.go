// Package apiserver provides the HTTP submission surface.
//
// The apiserver package exposes the interpreter service over a small REST
// API: POST /interpret accepts a language and source code and answers with
// the captured, byte-bounded stdout and stderr. Error classifications from
// the sandbox map onto HTTP statuses; raw runtime errors are never exposed
// to callers.
//
// Usage:
//
//	srv := apiserver.New(config, logger, service)
//	err := srv.Start()
package apiserver
