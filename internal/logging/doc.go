// Package logging builds the slog loggers used across chunkmux.
//
// A console handler writes one readable line per record with the component
// and pipeline stage lifted into the prefix; a JSON handler serves log
// shippers. Both carry the run ID when one is supplied. WarnWithContext and
// ErrorWithContext enforce the event_type/error_hint/impact fields that make
// degrade events searchable.
package logging
