// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package funnel

import "strings"

// excludedThemes lists job-seeking, recruitment and career-coaching phrases
// in Spanish and English. Matching is by lower-case substring.
var excludedThemes = []string{
	// Spanish
	"busco trabajo",
	"busco empleo",
	"buscando trabajo",
	"buscando empleo",
	"oferta de empleo",
	"oferta de trabajo",
	"oferta laboral",
	"estamos contratando",
	"vacante",
	"postúlate",
	"postulate",
	"reclutador",
	"reclutamiento",
	"entrevista de trabajo",
	"currículum vitae",
	"coach de carrera",
	"#opentowork",
	// English
	"hiring",
	"open to work",
	"opentowork",
	"job offer",
	"job opening",
	"looking for a job",
	"looking for work",
	"job search",
	"apply now",
	"recruiter",
	"recruiting",
	"job interview",
	"resume tips",
	"career coach",
}

// ExcludedTheme reports whether the text or author name contains a denylisted phrase.
func ExcludedTheme(text, author string) bool {
	haystack := strings.ToLower(text + " " + author)
	for _, term := range excludedThemes {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
