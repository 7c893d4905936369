// Package pipeline runs one panel analysis as a fixed task graph:
//
//	panel_fetch -> {current_resolve || target_resolve} -> reconcile -> summarize
//
// Only a panel_fetch failure ends a run early. Gene lookups that fail are
// absorbed by the resolvers and surface as "missing" or "changed" verdicts.
package pipeline
