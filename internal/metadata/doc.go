// Package metadata defines the canonical Record shape and the rules for
// building it from several sources.
//
// Normalizers in internal/sources produce partial Records with the helpers
// here (ParseKind, ParseRuntime, NormalizeRuntime, OrderCredits,
// DedupeCredits, SplitDemographics). Policy.Merge folds each partial record
// into the accumulated one; AddSource and StageFor track which sources have
// contributed.
package metadata
