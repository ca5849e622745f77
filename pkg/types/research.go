package types

import "time"

// NewsItem is a news headline gathered as context for a research note.
type NewsItem struct {
	Title     string    `json:"title" yaml:"title"`
	Link      string    `json:"link" yaml:"link"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`
}

// Idea is a content idea proposed from a source post and its news context.
type Idea struct {
	Title      string `json:"title" yaml:"title"`
	Hook       string `json:"hook" yaml:"hook"`
	Angle      string `json:"angle" yaml:"angle"`
	WhyItWorks string `json:"why_it_works" yaml:"why_it_works"`
}
