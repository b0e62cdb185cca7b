package logging

import "strings"

// FormatSubject builds the component/subject/stage prefix used in console output.
func FormatSubject(component, subject, stage string) string {
	component = strings.TrimSpace(component)
	subject = strings.TrimSpace(subject)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 2)
	if component != "" {
		parts = append(parts, component)
	}
	switch {
	case subject != "" && stage != "":
		parts = append(parts, subject+" ("+stage+")")
	case subject != "":
		parts = append(parts, subject)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
