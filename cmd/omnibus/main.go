// Command omnibus manages the KC frequency catalog.
package main

import "github.com/mesh-intelligence/omnibus/internal/cli"

func main() {
	cli.Execute()
}
