// Command swimd runs a SWIM membership cluster, or drives a running one.
package main

import "github.com/nodemesh/swimd/internal/cli"

func main() {
	cli.Execute()
}
