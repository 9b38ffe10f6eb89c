package gateway

import "strings"

// persona opens every synthesized prompt.
const persona = "You are PoopBot, a professional digestive health and lifestyle " +
	"consultation assistant for the Poopalooza app. You answer questions about " +
	"bowel health, diet, exercise, and daily habits."

// qualityRequirements are the fixed answer-quality properties every response
// must carry, independent of topic.
var qualityRequirements = []string{
	"Give quantified recommendations (exact amounts, frequencies, or durations), not vague advice.",
	"Explain the mechanism: why each recommendation works physiologically.",
	"Cover at least three angles: diet, exercise, and daily habits.",
	"State an explicit expected timeframe for improvement.",
	"State an explicit threshold at which the user should see a doctor.",
	"Use clear, short paragraphs and plain language; avoid dense medical jargon.",
}

// builtinTopicSections are the topic-specific required sub-sections. The
// general entry is a structured-answer checklist used when no specific topic
// matched.
var builtinTopicSections = map[Topic]string{
	TopicConstipation: `Required sub-sections for constipation:
1. Fiber: name concrete foods and a daily gram target (25-30 g), and warn about increasing fiber without water.
2. Hydration: give a daily water target in ml and the best times to drink.
3. Movement: name at least two specific exercises or movements that stimulate bowel motility.
4. Routine: explain the gastrocolic reflex and how to use a fixed toilet time.
5. Timeframe: typical improvement window is 3-7 days with consistent changes.
6. Escalation: no bowel movement for more than 7 days, severe pain, or blood means see a doctor.`,

	TopicDiarrhea: `Required sub-sections for diarrhea:
1. Hydration first: fluids and electrolytes to replace, with amounts, and warning signs of dehydration.
2. Diet: gentle foods to prefer and irritants to avoid (caffeine, alcohol, dairy, fried food) while symptoms last.
3. Rest the gut: smaller meals, and when to reintroduce normal food.
4. Timeframe: most acute episodes settle within 48-72 hours.
5. Escalation: more than 3 days, high fever, bloody stool, or dehydration signs means see a doctor.`,

	TopicBloating: `Required sub-sections for bloating:
1. Gas-producing foods: name common culprits (beans, carbonated drinks, cruciferous vegetables) and swaps.
2. Eating pace: chewing, meal speed, and swallowed air.
3. Movement: post-meal walking and positions that help release gas.
4. Patterns: how to spot personal trigger foods with a simple diary.
5. Timeframe: meal-related bloating usually eases within hours; habitual change shows within 1-2 weeks.
6. Escalation: persistent bloating beyond 2 weeks, weight loss, or severe pain means see a doctor.`,

	TopicHemorrhoids: `Required sub-sections for hemorrhoids:
1. Straining: why to avoid it and how stool softness (fiber, water) reduces it.
2. Toilet habits: time limits on sitting, and posture.
3. Relief: warm sitz baths with duration and frequency.
4. Activity: avoiding long sitting, gentle exercise.
5. Timeframe: mild cases typically improve in 1-2 weeks with care.
6. Escalation: heavy or persistent bleeding, severe pain, or no improvement means see a doctor.`,

	TopicGeneral: `Structure the answer as a checklist:
1. Briefly restate what the user is dealing with.
2. Give 3-5 concrete, quantified recommendations.
3. For each, add one line on why it works.
4. Close with an expected timeframe and a clear see-a-doctor threshold.`,
}

// languageInstructions close the prompt with the required output language.
var languageInstructions = map[Language]string{
	LangEnglish:  "Respond in English.",
	LangChinese:  "Respond in Traditional Chinese (繁體中文).",
	LangJapanese: "Respond in Japanese (日本語).",
	LangKorean:   "Respond in Korean (한국어).",
}

// Synthesizer builds upstream prompts from a question, its language, and its
// topic. It holds no state besides the topic section table and performs no
// network or counter access.
type Synthesizer struct {
	sections map[Topic]string
}

// NewSynthesizer creates a synthesizer seeded with the built-in topics.
func NewSynthesizer() *Synthesizer {
	sections := make(map[Topic]string, len(builtinTopicSections))
	for t, s := range builtinTopicSections {
		sections[t] = s
	}
	return &Synthesizer{sections: sections}
}

// RegisterTopic adds or replaces the required sub-sections for a topic.
// Existing topics are unaffected.
func (s *Synthesizer) RegisterTopic(topic Topic, section string) {
	s.sections[topic] = section
}

// Build fills the prompt template. Unknown topics fall back to the general
// checklist.
func (s *Synthesizer) Build(question string, lang Language, topic Topic) string {
	section, ok := s.sections[topic]
	if !ok {
		section = s.sections[TopicGeneral]
	}
	instruction, ok := languageInstructions[lang]
	if !ok {
		instruction = languageInstructions[LangEnglish]
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nAnswer-quality requirements:\n")
	for _, req := range qualityRequirements {
		b.WriteString("- ")
		b.WriteString(req)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(section)
	b.WriteString("\n\nUser question: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(instruction)
	return b.String()
}
