package agent

import "github.com/hupe1980/agentcrew/core"

// InstructionProvider derives a system instruction from the current task,
// for agents whose behavior depends on routing output such as the classified
// intent or extracted parameters.
type InstructionProvider func(task *core.TaskContext) (string, error)

// Instruction is either a static system prompt or a per-task provider.
// The zero value resolves to an empty instruction.
type Instruction struct {
	static   string
	provider InstructionProvider
}

// StaticInstruction wraps a fixed system prompt.
func StaticInstruction(text string) Instruction {
	return Instruction{static: text}
}

// DynamicInstruction wraps a per-task instruction provider.
func DynamicInstruction(provider InstructionProvider) Instruction {
	return Instruction{provider: provider}
}

// Resolve returns the instruction text for the task. A provider error is
// returned as-is so the executor can contain it.
func (i Instruction) Resolve(task *core.TaskContext) (string, error) {
	if i.provider != nil {
		return i.provider(task)
	}
	return i.static, nil
}
