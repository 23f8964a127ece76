// Command gantt tracks task dependencies, progress and schedules.
package main

import "github.com/papapumpkin/gantt/cmd"

func main() {
	cmd.Execute()
}
