package main

import (
	"github.com/abdul-hamid-achik/volt/apps/cli/cmd"
	"github.com/abdul-hamid-achik/volt/packages/http"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	http.UserAgent = "Volt-API/" + version
	cmd.Execute(version, buildTime)
}
