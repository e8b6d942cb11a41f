// Package apierror provides error inspection capabilities for Vibrent Health
// API errors. It centralizes the logic for identifying different types of
// errors returned by the platform's REST endpoints, eliminating the need for
// string-based error checking throughout the codebase.
package apierror
