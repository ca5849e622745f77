package ai

import (
	"context"
	"encoding/json"
	"strings"
)

// StubClient returns canned answers keyed on the system prompt, for dry
// runs without an API key.
type StubClient struct{}

func (s *StubClient) Complete(_ context.Context, system, prompt string) (string, error) {
	switch system {
	case expandSystem:
		b, _ := json.Marshal(map[string][]string{
			"queries": {"tendencias de liderazgo", "lecciones de equipo"},
		})
		return string(b), nil

	case scoreSystem:
		return `{"high_engagement_indices": [0, 1, 2]}`, nil

	case outlineSystem:
		return "---\nANÁLISIS: [Stub] Idea central del post.\nHOOKS: Agresivo / Historia / Dato\nCUERPO: 1. Contexto 2. Problema 3. Solución 4. Resultado\nCIERRE: ¿Y tú qué opinas?\n---", nil

	case ideasSystem:
		b, _ := json.Marshal(map[string]any{
			"ideas": []map[string]string{
				{"title": "[Stub] Idea", "hook": "Nadie te cuenta esto.", "angle": "Contrario", "why_it_works": "Genera debate."},
			},
		})
		return string(b), nil
	}

	// Rewrite runs with persona instructions as the system prompt.
	if i := strings.Index(prompt, "[TEXTO_ORIGINAL]:"); i >= 0 {
		return "[Stub] " + strings.TrimSpace(firstLine(prompt[i+len("[TEXTO_ORIGINAL]:"):])), nil
	}
	return "{}", nil
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n ")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
