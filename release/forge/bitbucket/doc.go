// Package bitbucket implements forge.Forge on Bitbucket Server through its
// REST 1.0 API. Owner is the project key and Repo the repository slug. Since
// Bitbucket Server has no release objects, CreateRelease creates an annotated
// tag at the configured release ref.
package bitbucket
