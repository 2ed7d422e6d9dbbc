// Package markdown is the entity codec: it parses and serializes the
// constrained markdown dialect the store uses as its on-disk format.
//
// Every entity file has a fixed heading ("# Epic: <title>"), a metadata block
// of "- **Key**: value" lines, and optional named sections (Description,
// Features, User Stories, Acceptance Criteria, Dependencies) whose bodies are
// free text or checkbox list items. Decoding is tolerant: missing optional
// data falls back to type-specific defaults, and only an absent ID field is
// an error.
package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmspec/pmspec/internal/project"
)

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncodeEpic renders an Epic as markdown.
func EncodeEpic(e *project.Epic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Epic: %s\n\n", e.Title)
	fmt.Fprintf(&b, "- **ID**: %s\n", e.ID)
	fmt.Fprintf(&b, "- **Status**: %s\n", e.Status)
	if e.Owner != "" {
		fmt.Fprintf(&b, "- **Owner**: %s\n", e.Owner)
	}
	fmt.Fprintf(&b, "- **Estimate**: %s hours\n", formatHours(e.Estimate))
	fmt.Fprintf(&b, "- **Actual**: %s hours\n", formatHours(e.Actual))
	b.WriteString("\n")

	if e.Description != "" {
		fmt.Fprintf(&b, "## Description\n%s\n\n", e.Description)
	}
	if len(e.Features) > 0 {
		b.WriteString("## Features\n")
		for _, fid := range e.Features {
			fmt.Fprintf(&b, "- [ ] %s\n", fid)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// EncodeFeature renders a Feature as markdown, including its inline
// User Stories. A story's checkbox records only done-ness: "done" encodes as
// [x], every other status as [ ].
func EncodeFeature(f *project.Feature) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Feature: %s\n\n", f.Title)
	fmt.Fprintf(&b, "- **ID**: %s\n", f.ID)
	fmt.Fprintf(&b, "- **Epic**: %s\n", f.EpicID)
	fmt.Fprintf(&b, "- **Status**: %s\n", f.Status)
	fmt.Fprintf(&b, "- **Priority**: %s\n", f.Priority)
	if f.Assignee != "" {
		fmt.Fprintf(&b, "- **Assignee**: %s\n", f.Assignee)
	}
	fmt.Fprintf(&b, "- **Estimate**: %s hours\n", formatHours(f.Estimate))
	fmt.Fprintf(&b, "- **Actual**: %s hours\n", formatHours(f.Actual))
	if len(f.SkillsRequired) > 0 {
		fmt.Fprintf(&b, "- **Skills Required**: %s\n", strings.Join(f.SkillsRequired, ", "))
	}
	b.WriteString("\n")

	if f.Description != "" {
		fmt.Fprintf(&b, "## Description\n%s\n\n", f.Description)
	}
	if len(f.UserStories) > 0 {
		b.WriteString("## User Stories\n")
		for _, s := range f.UserStories {
			checkbox := "[ ]"
			if s.Status == project.StoryDone {
				checkbox = "[x]"
			}
			fmt.Fprintf(&b, "- %s %s: %s (%sh)\n", checkbox, s.ID, s.Title, formatHours(s.Estimate))
		}
		b.WriteString("\n")
	}
	if len(f.AcceptanceCriteria) > 0 {
		b.WriteString("## Acceptance Criteria\n")
		for _, c := range f.AcceptanceCriteria {
			fmt.Fprintf(&b, "- [ ] %s\n", c)
		}
		b.WriteString("\n")
	}
	if len(f.Dependencies) > 0 {
		b.WriteString("## Dependencies\n")
		var blocks, relates []string
		for _, d := range f.Dependencies {
			switch d.Type {
			case project.DepBlocks:
				blocks = append(blocks, d.FeatureID)
			case project.DepRelatesTo:
				relates = append(relates, d.FeatureID)
			}
		}
		if len(blocks) > 0 {
			fmt.Fprintf(&b, "- blocks: %s\n", strings.Join(blocks, ", "))
		}
		if len(relates) > 0 {
			fmt.Fprintf(&b, "- relates-to: %s\n", strings.Join(relates, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// EncodeMilestone renders a Milestone as markdown.
func EncodeMilestone(m *project.Milestone) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Milestone: %s\n\n", m.Title)
	fmt.Fprintf(&b, "- **ID**: %s\n", m.ID)
	fmt.Fprintf(&b, "- **Target Date**: %s\n", m.TargetDate)
	fmt.Fprintf(&b, "- **Status**: %s\n", m.Status)
	b.WriteString("\n")

	if m.Description != "" {
		fmt.Fprintf(&b, "## Description\n%s\n\n", m.Description)
	}
	if len(m.Features) > 0 {
		b.WriteString("## Features\n")
		for _, fid := range m.Features {
			fmt.Fprintf(&b, "- [ ] %s\n", fid)
		}
		b.WriteString("\n")
	}
	return b.String()
}
