package pipeline

// StepID names a pipeline step.
type StepID string

const (
	StepStage  StepID = "stage"
	StepCommit StepID = "commit"
	StepPull   StepID = "pull"
	StepPush   StepID = "push"
)

// CommitMessage is the fixed message of sync commits.
const CommitMessage = "GitLight Sync"

// Step is one external command of the pipeline.
type Step struct {
	ID      StepID
	Command string
	// OnlyIfDirty runs the command only when the working tree has changes
	// relative to HEAD; a clean tree counts as success.
	OnlyIfDirty bool
}

var defaultSteps = [...]Step{
	{ID: StepStage, Command: "git add -A"},
	{ID: StepCommit, Command: "git commit -m '" + CommitMessage + "'", OnlyIfDirty: true},
	{ID: StepPull, Command: "git pull"},
	{ID: StepPush, Command: "git push"},
}

// Steps returns a copy of the fixed step sequence, in execution order.
func Steps() []Step {
	steps := make([]Step, len(defaultSteps))
	copy(steps, defaultSteps[:])
	return steps
}
