// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"text/template"
)

const (
	expandSystem  = "Eres un estratega de búsqueda para contenido de LinkedIn."
	scoreSystem   = "Eres un experto en métricas de redes sociales."
	outlineSystem = "Actúa como un Estratega de Contenido Viral."
	ideasSystem   = "You are a senior LinkedIn content strategist."
)

var expandPromptTmpl = template.Must(template.New("expand").Parse(`Genera hasta {{.Max}} variantes de búsqueda para encontrar posts de LinkedIn sobre este tema.
Cada variante debe ser una consulta corta (2 a 5 palabras) distinta de la original.
Criterio: {{.Hint}}

TEMA: {{.Seed}}

Devuelve solo un JSON con esta estructura:
{"queries": ["variante 1", "variante 2"]}
`))

var scorePromptTmpl = template.Must(template.New("score").Parse(`Analiza estos posts de LinkedIn y determina cuáles tienen ALTO ENGAGEMENT.
Un post con alto engagement puede tener:
- Muchos likes (>50)
- O muchos comentarios (>10)
- O muchos shares (>5)
- O una combinación que indica viralidad

POSTS:
{{.Posts}}

Devuelve un JSON con los índices de los posts con alto engagement (máximo {{.Max}}), ordenados de mayor a menor:
{"high_engagement_indices": [0, 2, 4]}

Si ninguno tiene alto engagement, devuelve: {"high_engagement_indices": []}
`))

var outlinePromptTmpl = template.Must(template.New("outline").Parse(`Analiza el siguiente contenido y crea un esquema (Outline) estratégico para un post de LinkedIn.

INPUT:
{{.Text}}

Salida esperada (Markdown):
---
ANÁLISIS: (Resumen en 1 frase)
HOOKS: (3 opciones: Agresivo, Historia, Dato)
CUERPO: (4 puntos clave)
CIERRE: (Frase final)
---
`))

var rewritePromptTmpl = template.Must(template.New("rewrite").Parse(`Reescribe este contenido para LinkedIn basándote en el outline.
Mantén la esencia pero adáptalo a MI voz.

[OUTLINE]:
{{.Outline}}

[TEXTO_ORIGINAL]:
{{.Original}}

Genera el post final listo para publicar.
`))

var ideasPromptTmpl = template.Must(template.New("ideas").Parse(`SOURCE_POST: {{.Post}}
AUX_RESEARCH: {{.Research}}

Genera {{.Count}} ideas de contenido viral para LinkedIn basadas en esto.
Devuelve JSON con esta estructura:
{
  "ideas": [
    {"title": "", "hook": "", "angle": "", "why_it_works": ""}
  ]
}
`))

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
