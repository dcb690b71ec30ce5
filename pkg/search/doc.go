// Package search finds and highlights a graph node by its JSON path.
//
// Queries and node paths are compared after normalization: surrounding
// whitespace is trimmed from the query and a single leading "$" is removed
// together with a "." directly after it. These all name the same node:
//
//	$.user.address.city
//	$user.address.city
//	user.address.city
//
// Matching is exact. There are no wildcards and no partial matches.
//
// # Outcomes
//
// [Search] distinguishes three outcomes:
//
//   - [OutcomeEmptyQuery]: the query was blank; nodes are returned untouched
//     and the error carries code EMPTY_QUERY.
//   - [OutcomeNoMatch]: no node matched; every node is reset to its kind
//     style and the error carries code NO_MATCH. [Result.Suggestions] lists
//     close paths ranked by fuzzy score.
//   - [OutcomeMatch]: the first node in node order whose path matches is
//     highlighted and all others are reset.
//
// [Clear] resets every node regardless of any earlier search.
//
// Search never changes ids, paths or positions.
package search
