// Package registry keeps the named external data sources ("tools") a
// tabular handler can query, e.g. google_sheets, notion or crm.
package registry
