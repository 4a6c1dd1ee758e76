// Package github implements forge.Forge on GitHub (cloud or enterprise).
// Configure with a Config containing a personal access token. Set
// EnterpriseHost for GitHub Enterprise installations, or APIURL to point the
// client at an arbitrary API root.
package github
