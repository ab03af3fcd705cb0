// Package export renders catalog rows into vendor file formats: CHIRP,
// Uniden, SDRTrunk, OpenGD77, SDR++ and the HamDash channel list, plus the
// KC repeater and business reference lists.
//
// Every function here is pure. Callers read rows from the store (usually
// through one of the export views) and write the returned bytes wherever
// they like. The same input always yields byte-identical output.
package export
