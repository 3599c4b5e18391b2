package main

import (
	"github.com/wafops/go-waf-admin/cmd"
	"github.com/wafops/go-waf-admin/version"
)

func main() {
	cmd.SetVersion(version.Version)
	cmd.Execute()
}
