// Package catalog manages the declarative side of the platform: agent
// definitions and workflow graphs loaded from YAML files and served to the
// engine through in-memory stores.
package catalog
