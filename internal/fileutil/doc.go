// Package fileutil holds small filesystem helpers shared by the conversion
// pipeline and the export commands.
package fileutil
