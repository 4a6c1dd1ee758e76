// Package publish implements the release workflow: it
// creates the forge release of the next version, thanks
// the contributors and comments on every pull request the
// release includes.
package publish
