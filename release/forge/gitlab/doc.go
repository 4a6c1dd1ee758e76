// Package gitlab implements forge.Forge on GitLab (gitlab.com or
// self-managed). Merge requests play the role of pull requests; draft state is
// carried by the "Draft: " title prefix. Release links point at the project's
// releases page.
package gitlab
