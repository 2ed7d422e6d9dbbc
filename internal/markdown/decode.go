package markdown

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pmspec/pmspec/internal/project"
)

// ErrMissingID marks a file that has no ID metadata. Callers listing a
// directory treat it as "skip this file"; everything else decodes with
// defaults.
var ErrMissingID = errors.New("missing ID metadata")

var (
	metaRe       = regexp.MustCompile(`(?m)^-\s+\*\*(.+?)\*\*:\s*(.+)$`)
	epicTitleRe  = regexp.MustCompile(`(?m)^#\s+Epic:\s+(.+)$`)
	featTitleRe  = regexp.MustCompile(`(?m)^#\s+Feature:\s+(.+)$`)
	mileTitleRe  = regexp.MustCompile(`(?m)^#\s+Milestone:\s+(.+)$`)
	featureIDRe  = regexp.MustCompile(`-\s+\[[x ]\]\s+(FEAT-\d+)`)
	// The estimate is anchored to end of line so an "(Nh)" inside the
	// title is not mistaken for it.
	storyRe      = regexp.MustCompile(`(?m)-\s+\[([x ])\]\s+(STORY-\d+):\s+(.+?)\s+\((\d+(?:\.\d+)?)h\)[ \t]*$`)
	criterionRe  = regexp.MustCompile(`(?m)^-\s+\[[x ]\]\s+(.+)$`)
	blocksRe     = regexp.MustCompile(`(?im)^-\s+blocks:\s+(.+)$`)
	relatesToRe  = regexp.MustCompile(`(?im)^-\s+relates-to:\s+(.+)$`)
	featIDOnlyRe = regexp.MustCompile(`^FEAT-\d+$`)
)

// parseMetadata extracts the "- **Key**: value" block into a map.
func parseMetadata(content string) map[string]string {
	meta := make(map[string]string)
	for _, m := range metaRe.FindAllStringSubmatch(content, -1) {
		meta[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
	}
	return meta
}

// section returns the body of a "## name" section, up to the next section
// heading or end of input.
func section(content, name string) (string, bool) {
	marker := "## " + name + "\n"
	i := strings.Index(content, marker)
	if i < 0 {
		return "", false
	}
	body := content[i+len(marker):]
	if j := strings.Index(body, "\n## "); j >= 0 {
		body = body[:j]
	}
	return body, true
}

func sectionText(content, name string) string {
	body, ok := section(content, name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(body)
}

// parseHours reads a numeric metadata value like "40 hours" or "12.5".
// Unparsable or absent values fall back to 0.
func parseHours(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseTitle(content string, re *regexp.Regexp, meta map[string]string) string {
	if m := re.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if t := meta["Title"]; t != "" {
		return t
	}
	return "Untitled"
}

func parseFeatureIDList(content, name string) []string {
	body, ok := section(content, name)
	if !ok {
		return nil
	}
	var ids []string
	for _, m := range featureIDRe.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

// DecodeEpic parses an Epic from markdown. Missing optional fields default
// (status planning, numerics 0, empty feature list); a missing ID is the
// only decode error.
func DecodeEpic(raw string) (*project.Epic, error) {
	meta := parseMetadata(raw)
	if meta["ID"] == "" {
		return nil, fmt.Errorf("epic: %w", ErrMissingID)
	}

	status := project.EpicStatus(meta["Status"])
	if !status.IsValid() {
		status = project.EpicPlanning
	}

	return &project.Epic{
		ID:          meta["ID"],
		Title:       parseTitle(raw, epicTitleRe, meta),
		Description: sectionText(raw, "Description"),
		Status:      status,
		Owner:       meta["Owner"],
		Estimate:    parseHours(meta["Estimate"]),
		Actual:      parseHours(meta["Actual"]),
		Features:    parseFeatureIDList(raw, "Features"),
	}, nil
}

// DecodeFeature parses a Feature, including its inline User Stories,
// acceptance criteria and dependency edges.
func DecodeFeature(raw string) (*project.Feature, error) {
	meta := parseMetadata(raw)
	if meta["ID"] == "" {
		return nil, fmt.Errorf("feature: %w", ErrMissingID)
	}
	id := meta["ID"]

	status := project.FeatureStatus(meta["Status"])
	if !status.IsValid() {
		status = project.FeatureTodo
	}
	priority := project.Priority(meta["Priority"])
	if !priority.IsValid() {
		priority = project.PriorityMedium
	}

	var skills []string
	if s := meta["Skills Required"]; s != "" {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				skills = append(skills, part)
			}
		}
	}

	var stories []project.UserStory
	if body, ok := section(raw, "User Stories"); ok {
		for _, m := range storyRe.FindAllStringSubmatch(body, -1) {
			status := project.StoryTodo
			if m[1] == "x" {
				status = project.StoryDone
			}
			estimate, _ := strconv.ParseFloat(m[4], 64)
			stories = append(stories, project.UserStory{
				ID:        m[2],
				FeatureID: id,
				Title:     strings.TrimSpace(m[3]),
				Estimate:  estimate,
				Status:    status,
			})
		}
	}

	var criteria []string
	if body, ok := section(raw, "Acceptance Criteria"); ok {
		for _, m := range criterionRe.FindAllStringSubmatch(body, -1) {
			criteria = append(criteria, strings.TrimSpace(m[1]))
		}
	}

	var deps []project.Dependency
	if body, ok := section(raw, "Dependencies"); ok {
		deps = append(deps, parseDepLine(body, blocksRe, project.DepBlocks)...)
		deps = append(deps, parseDepLine(body, relatesToRe, project.DepRelatesTo)...)
	}

	return &project.Feature{
		ID:                 id,
		EpicID:             meta["Epic"],
		Title:              parseTitle(raw, featTitleRe, meta),
		Description:        sectionText(raw, "Description"),
		Status:             status,
		Priority:           priority,
		Assignee:           meta["Assignee"],
		Estimate:           parseHours(meta["Estimate"]),
		Actual:             parseHours(meta["Actual"]),
		SkillsRequired:     skills,
		Dependencies:       deps,
		UserStories:        stories,
		AcceptanceCriteria: criteria,
	}, nil
}

func parseDepLine(body string, re *regexp.Regexp, typ project.DependencyType) []project.Dependency {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	var deps []project.Dependency
	for _, part := range strings.Split(m[1], ",") {
		id := strings.TrimSpace(part)
		if featIDOnlyRe.MatchString(id) {
			deps = append(deps, project.Dependency{FeatureID: id, Type: typ})
		}
	}
	return deps
}

// DecodeMilestone parses a Milestone from markdown.
func DecodeMilestone(raw string) (*project.Milestone, error) {
	meta := parseMetadata(raw)
	if meta["ID"] == "" {
		return nil, fmt.Errorf("milestone: %w", ErrMissingID)
	}

	status := project.MilestoneStatus(meta["Status"])
	if !status.IsValid() {
		status = project.MilestoneUpcoming
	}

	return &project.Milestone{
		ID:          meta["ID"],
		Title:       parseTitle(raw, mileTitleRe, meta),
		Description: sectionText(raw, "Description"),
		TargetDate:  meta["Target Date"],
		Status:      status,
		Features:    parseFeatureIDList(raw, "Features"),
	}, nil
}
