// Command arap runs ARAP anonymous routing simulations.
package main

import "github.com/sarchlab/arap/arap/cmd"

func main() {
	cmd.Execute()
}
