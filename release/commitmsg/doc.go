// Package commitmsg generates the release commit message, the merge commit
// message used when reconciling branches, the contributor thank-you block,
// and the comment posted on released pull requests. ExtractVersion parses a
// release commit message back into its version.
package commitmsg
