// Package testutil contains helper utilities used across tests to reduce
// boilerplate when capturing event traces and constructing core model
// objects. These helpers are intentionally minimal and avoid adding
// third-party dependencies. They are not intended for production usage.
package testutil
