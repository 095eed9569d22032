// Command barista runs the Wime Cafe ordering assistant in a terminal,
// over HTTP or as an MCP server.
package main

func main() {
	Execute()
}
