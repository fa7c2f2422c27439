package core

// Agent is the unit the runner executes. Implementations receive a RunContext
// scoped to one invocation, emit events through it and respect cancellation
// via its embedded context.
type Agent interface {
	Name() string
	Description() string
	Run(runCtx *RunContext) error
}

// AgentInfo carries identifying details about an agent used in contexts.
type AgentInfo struct{ Name, Type string }
