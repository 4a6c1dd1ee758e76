// Package git drives a local checkout through the git CLI. Repo exposes the
// primitives the release workflows need (branch listing, checkout, pull,
// merge, staged diff summary, add, commit, push) as context-aware methods that
// return errors instead of exiting, so callers decide which failures are fatal.
package git
