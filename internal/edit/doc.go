// Package edit mutates nodes of a loaded model tree.
//
// Edits are dispatched on the node's kind. Each kind has a fixed, explicit
// set of editable fields; a key outside that set is rejected with an
// *UnknownAttributeError. Every request is validated completely before the
// first field is written, so a failed edit leaves the node exactly as it was.
package edit
