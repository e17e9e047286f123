// Package catalog holds the declarative provider definitions that drive the
// whole pipeline: endpoint layout, wire dialect, and per-provider quirks.
//
// A [Catalog] starts from the persisted definition set when one exists and
// falls back to the compiled-in [Bundled] set otherwise, including when the
// persisted set is empty or unparseable. Mutations validate, persist, and
// only then publish a fresh immutable snapshot, so concurrent readers never
// lock and never see partial state.
package catalog
