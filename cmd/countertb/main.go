// Command countertb runs the counter testbench.
package main

import "github.com/sarchlab/tbkit/cmd/countertb/cmd"

func main() {
	cmd.Execute()
}
