// Package report renders the end-of-run summary table.
package report
