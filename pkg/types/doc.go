// Package types defines the catalog entities (frequencies, trunked systems,
// sites, talkgroups, counties, radios, export profiles, settings), the filter
// objects accepted by the record store, and the standard errors shared by the
// storage backend, the export projector, and the CLI.
package types
