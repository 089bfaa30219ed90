// Command statechartctl validates, exports, and diagrams a state
// chart declared as a YAML document (the yamlspec package's Chart
// shape), grounded on aretw0-trellis's cmd/trellis layout: a root.go
// holding the base cobra.Command, one file per subcommand registering
// itself from init, and a thin main.go that just calls Execute.
package main

func main() {
	Execute()
}
