package transform

import "fmt"

const classifySystemPrompt = "You are an expert at analyzing human facial features and matching them " +
	"to dog breeds. Analyze the face shape, facial structure, expression, " +
	"and overall appearance to determine which dog breed they most resemble. " +
	"Respond with ONLY the dog breed name, nothing else. Be specific (e.g., " +
	"'Golden Retriever' not just 'Retriever'). Choose popular, recognizable breeds."

const classifyQuestion = "What dog breed does this person most closely resemble?"

const describeSystemPrompt = "You are an expert at describing human portraits. Describe this person's " +
	"appearance in detail, focusing on face shape, expression, pose, and " +
	"general appearance. Keep it concise but detailed."

const describeQuestion = "Describe this person's appearance:"

// transitionPrompt builds the generation prompt for an intermediate stage.
// Levels below 0.5 lean human, at or above 0.5 lean dog.
func transitionPrompt(breed, personDescription string, level float64) string {
	var desc string
	if level < 0.5 {
		desc = fmt.Sprintf(
			"a portrait that is mostly human but with subtle %s dog features beginning to emerge. "+
				"The face is primarily human-like with hints of dog characteristics. "+
				"Based on: %s", breed, personDescription)
	} else {
		desc = fmt.Sprintf(
			"a portrait that is mostly %s dog but retains some human characteristics. "+
				"The face is primarily dog-like but maintains hints of the original human features. "+
				"Based on: %s", breed, personDescription)
	}
	return fmt.Sprintf(
		"A photorealistic portrait showing %s. "+
			"Studio lighting, high detail, professional photography, "+
			"centered composition, neutral background. The transformation should look natural and seamless.",
		desc)
}

// finalPrompt builds the generation prompt for the fully transformed dog.
func finalPrompt(breed string) string {
	return fmt.Sprintf(
		"A photorealistic portrait of a %s dog, facing forward, friendly expression, full portrait. "+
			"Studio lighting, high detail, professional photography, "+
			"centered composition, neutral background.",
		breed)
}
