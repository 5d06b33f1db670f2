// Package observability provides the diagnostic logger and the coloured
// console printer used by dmenv commands. Diagnostics go through zerolog and
// are quiet unless --verbose or DMENV_LOG_LEVEL asks for them; user-facing
// progress lines go through Printer.
package observability
