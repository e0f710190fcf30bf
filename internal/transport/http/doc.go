// Package http contains the HTTP handlers for the dashboard API. Every
// handler renders errors as RFC 7807 problem documents through the
// shared ErrorHandler, and reads period/interval selections from query
// parameters with the dashboard defaults.
package http
