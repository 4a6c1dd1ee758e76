// Package config loads the inputs of a release run: the
// YAML configuration file, the JSON list of changes and
// the next version.
//
// A configuration file looks like:
//
//	ci:
//	  repoOwner: org
//	  repoName: repo
//	branches:
//	  pullRequest:
//	    template: release/{{version}}
//	  release:
//	    template: main
//	releaseDescription:
//	  command: ./scripts/notes.sh {{version}}
//	changelog:
//	  path: CHANGELOG.md
//	hooks:
//	  beforePrepare:
//	    proceedIf: test -z "$SKIP_RELEASE"
//	  afterRelease:
//	    run:
//	      - ./scripts/announce.sh {{version}}
//
// Every template and command may reference {{version}}.
package config
