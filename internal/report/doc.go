// Package report renders a finished run: a coloured summary table for the
// terminal and a YAML document for CI systems to archive.
package report
