// spygen rewrites Go packages so impspy scopes can intercept their functions and methods.
// Install it with `go install github.com/toejough/impspy/spygen@latest`, then run
// `spygen rewrite ./...` before testing, or `spygen rewrite --overlay .spy ./...` and
// `go test -overlay .spy/overlay.json ./...` to leave the sources untouched.
package main

import "github.com/toejough/impspy/spygen/cmd"

func main() {
	cmd.Execute()
}
