// Package match resolves source track descriptors to tracks in the Plex
// library.
//
// Plex search is a literal index: titles annotated with remix or feature
// tags often miss, and results can include unrelated tracks that happen to
// share words with the query. [Resolver] compensates with a relaxed retry
// query and a similarity cutoff on artist and album names computed by
// [QuickRatio].
package match
