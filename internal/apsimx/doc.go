// Package apsimx loads, addresses and saves the engine's native model files
// (.apsimx). A file is a JSON tree of `$type`-tagged nodes; this package
// decodes it into a tree of *Node values, keeps every property it does not
// interpret byte-for-byte, and writes the tree back in the same key order.
//
// Addressing is strict: Resolve and FindInScope return a *NodeNotFoundError
// instead of a nil node, because every caller is about to mutate what it
// resolved.
package apsimx
