// Package scoring converts per-provider match tags into a numeric ranking.
//
// A Calculator holds the weight table for one media kind (series or
// movies), folds in user-defined custom profiles, and computes both the
// maximum achievable score and the score for any given match set. Custom
// profiles are named condition lists evaluated against a subtitle
// candidate; a satisfied profile contributes its name to the match set so
// it scores like a base tag.
//
// The max-score arithmetic intentionally mirrors the behavior downstream
// thresholds were tuned against: positive profile scores are counted both
// through the merged score table and through the explicit profile sum,
// and the hash weight is always subtracted because a hash match never
// coexists with guessed matches. Do not change that arithmetic without
// re-tuning every stored threshold.
package scoring
