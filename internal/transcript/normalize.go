package transcript

import "strings"

// SurveyMarker identifies the satisfaction-survey footer the widget appends.
const SurveyMarker = "Tu opinión nos ayuda a mejorar."

// greetingSlot is the position of the automatic greeting in every export.
const greetingSlot = 1

// Normalize flattens a message list into the conversation text sent to the
// classification and summarization services. Messages keep their order and
// are newline separated; the greeting slot, blank messages and survey
// footers are dropped.
func Normalize(msgs []Message) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i == greetingSlot {
			continue
		}
		if strings.TrimSpace(m.Msg) == "" || strings.Contains(m.Msg, SurveyMarker) {
			continue
		}
		sb.WriteString(m.Msg)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
