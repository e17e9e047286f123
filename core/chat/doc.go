// Package chat defines the provider-independent request and response model.
//
// A [Request] carries role-tagged messages plus optional sampling parameters
// and feature flags; it is transient, built per call, and never mutated by
// the pipeline. A [Response] is the normalized result of one exchange:
// extracted text or an error message (never both), token usage, resolved
// cost, and optional citation extras. [Stream] wraps the incremental form as
// an ordered, finite, non-restartable sequence of [Fragment] values built on
// iter.Seq2 range-over-func iteration.
package chat
