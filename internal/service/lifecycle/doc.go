// Package lifecycle drives every configured program through
// Resolving -> VersionChecked -> AssetSelected -> Converging -> Done,
// or stops it in Skipped or Failed.
//
// Programs run one after another. A program's failure is converted into an
// Outcome and never stops its siblings. Every stage transition is emitted as
// an Event to a Reporter, so the decision logic never prints.
package lifecycle
