// Package library manages the named JSON records that configure analyses.
//
// Three record families live under the library root, one file per record,
// the file stem being the record name:
//
//	library/instruments/<name>.json   response factors per compound column
//	library/reactions/<name>.json     feed compounds and product groups
//	library/antoine/antoine_coef.json Antoine coefficients per compound
//
// Loading a name that has no record is a configuration error surfaced to the
// caller; adding a reaction under an existing name is a conflict. Records are
// validated on every load so a hand-edited file fails fast instead of
// producing wrong metrics.
package library
