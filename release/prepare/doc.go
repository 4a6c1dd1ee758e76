// Package prepare implements the release preparation
// workflow: it keeps a long-lived pull request branch in
// sync with the release branch, regenerates the changelog
// on it and opens or refreshes a draft pull request.
//
// A run moves through the states RECONCILING, HOOK_GATE,
// CHANGELOG, COMMIT_PUSH, PR_CREATE and HOOK_AFTER before
// reaching DONE. The beforePrepare hook may cancel the run
// at HOOK_GATE; nothing is written or pushed in that case.
package prepare
