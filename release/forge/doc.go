// Package forge defines the Forge strategy interface used by the release
// workflows to talk to a code hosting platform: create-or-update a pull
// request, create a release, and comment on a pull request.
//
// Implementations for GitHub, GitLab, and Bitbucket Server live in
// sub-packages. DryRun logs every call and performs none of them.
package forge
