// Package logging builds the slog loggers used across ytbatch.
//
// It supports a console format for interactive use and a JSON format for
// machine consumption, selected by configuration. Attribute helpers and
// standardized field names keep run, row, and correlation identifiers
// consistent between the workflow manager and the engine clients.
package logging
