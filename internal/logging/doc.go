// Package logging assembles the structured slog loggers used across
// whisperarc.
//
// It owns the console and JSON handlers, level parsing, and the stdout plus
// log-file fan-out, and exposes small attr helpers so components emit fields
// with consistent shapes. Components receive loggers by injection; nothing in
// this repository logs through a package-level singleton.
package logging
