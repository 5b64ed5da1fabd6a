// Package web includes the static web page of the monitoring server.
package web

import (
	"embed"
	"fmt"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"
)

//go:embed index.html
var staticAssets embed.FS

// GetAssets returns the static assets
func GetAssets() http.FileSystem {
	if isDevelopmentMode() {
		_, assetPath, _, ok := runtime.Caller(0)
		if !ok {
			panic("error getting path")
		}

		assetPath = path.Dir(assetPath)

		fmt.Fprintf(os.Stderr,
			"In monitoring development mode, serving assets from %s\n", assetPath)

		return http.Dir(assetPath)
	}

	return http.FS(staticAssets)
}

// isDevelopmentMode returns true if environment variable TBKIT_MONITOR_DEV is
// set.
func isDevelopmentMode() bool {
	evValue, exist := os.LookupEnv("TBKIT_MONITOR_DEV")
	if !exist {
		return false
	}

	return strings.ToLower(evValue) == "true" || evValue == "1"
}
