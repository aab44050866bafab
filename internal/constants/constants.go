// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// AppName identifies this service in exports and logs
const AppName = "trackreconcile"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH
