// Command agentcrew is the interactive CLI for the AgentCrew orchestration
// core: a chat loop routed through the capability registry, a competency
// assessment loop, and registry inspection.
package main

func main() {
	Execute()
}
