// Package middleware provides HTTP middleware: W3C Extended Log Format
// request logging and Prometheus request metrics.
package middleware
