// Package deps checks that the external binaries playbridge shells out to
// are installed.
package deps
