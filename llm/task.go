package llm

// Task identifies which graph stage a model call serves. Cheap stages run
// on the small model; judgment-heavy stages get the default tier.
type Task string

// Tasks.
const (
	TaskClassify   Task = "classify"
	TaskExtract    Task = "extract"
	TaskReview     Task = "review"
	TaskSynthesize Task = "synthesize"
	TaskDraft      Task = "draft"
	TaskEnrich     Task = "enrich"
)

// ModelMap maps tasks to model names.
type ModelMap map[Task]string

// DefaultModels is the standard task-to-model mapping.
var DefaultModels = ModelMap{
	TaskClassify:   "gpt-4o-mini",
	TaskExtract:    "gpt-4o-mini",
	TaskEnrich:     "gpt-4o-mini",
	TaskReview:     "gpt-4o",
	TaskSynthesize: "gpt-4o",
	TaskDraft:      "gpt-4o",
}

// For returns the model for a task, falling back to the default tier.
func (m ModelMap) For(t Task) string {
	if model, ok := m[t]; ok {
		return model
	}
	return "gpt-4o"
}
