// Package releasenotes turns the merged changes of a milestone into a
// markdown release-notes document.
package releasenotes

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/shipwright/internal/hosting"
)

// Placeholder is the body used when no milestone matches the version.
const Placeholder = "No release notes for this version."

// Entry is one merged change in the notes.
type Entry struct {
	Number int
	Title  string
	Author string
	Label  string
}

func (e Entry) String() string {
	return fmt.Sprintf("#%d %s. credit %s", e.Number, e.Title, e.Author)
}

// Section groups entries sharing a first label. The unlabeled section has an
// empty Label.
type Section struct {
	Label   string
	Entries []Entry
}

// Document is the generated release notes.
type Document struct {
	Version  string
	Sections []Section
	// Placeholder is set when no milestone matched Version.
	Placeholder bool
}

// Generate builds the notes for version from the milestones and merged
// changes returned by the hosting service. Sections and entries keep the
// order in which the changes were returned.
func Generate(version string, milestones []hosting.Milestone, changes []hosting.Change) Document {
	doc := Document{Version: version}
	if !hasMilestone(milestones, version) {
		doc.Placeholder = true
		return doc
	}

	index := make(map[string]int)
	for _, c := range changes {
		if c.Milestone != version {
			continue
		}
		label := c.FirstLabel()
		i, ok := index[label]
		if !ok {
			i = len(doc.Sections)
			index[label] = i
			doc.Sections = append(doc.Sections, Section{Label: label})
		}
		doc.Sections[i].Entries = append(doc.Sections[i].Entries, Entry{
			Number: c.Number,
			Title:  c.Title,
			Author: c.Author,
			Label:  label,
		})
	}
	return doc
}

func hasMilestone(milestones []hosting.Milestone, title string) bool {
	for _, m := range milestones {
		if m.Title == title {
			return true
		}
	}
	return false
}

// Markdown renders the document.
func (d Document) Markdown() string {
	if d.Placeholder {
		return Placeholder + "\n"
	}
	var b strings.Builder
	for i, s := range d.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		title := s.Label
		if title == "" {
			title = "Other changes"
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}
