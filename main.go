package main

import "webview-cli/cmd"

func main() {
	cmd.Execute()
}
