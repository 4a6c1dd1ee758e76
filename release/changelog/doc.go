// Package changelog renders release sections and keeps the changelog file up
// to date.
//
// Renderer expands fasttemplate templates ({{version}}, {{changes}},
// {{title}}, {{author}}, {{pr}}, {{number}}). Merge places a section under the
// "# Changelog" heading above the previous content and replaces an existing
// section for the same version, so regenerating with the same input is a
// no-op. Updater writes and stages the file, then commits and pushes only when
// the staged diff is not empty.
package changelog
