package main

import "github.com/99-jordan/yarro-maintenance-triage/cmd"

func main() {
	cmd.Execute()
}
