// Package cost defines the per-million-token pricing math shared by the
// pricing resolver and the client's pre-send estimation.
//
// The single main type is [ModelCost], a USD-per-million price pair with
// helpers for computing the cost of an exchange. [FromPerToken] converts
// externally published per-token rates into that representation.
package cost
