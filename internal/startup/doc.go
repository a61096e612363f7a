// Package startup handles application initialization: environment
// configuration, directory validation, and structured startup/shutdown
// logging.
package startup
