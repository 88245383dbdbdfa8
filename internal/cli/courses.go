package cli

import (
	"strings"

	"github.com/julianstephens/jadwal/internal/models"
)

type CoursesCmd struct {
	Code     string `help:"Only show courses whose code starts with this prefix."`
	OpenOnly bool   `help:"Hide closed sections."`
	ShowIDs  bool   `help:"Show section ids (needed for add/check)."`
}

// subject is one course code with its sibling sections in catalog order.
type subject struct {
	code     string
	name     string
	sections []models.Course
}

func (c *CoursesCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	courses, err := p.Courses()
	if err != nil {
		return err
	}

	subjects := groupSubjects(filterCourses(courses, c.Code, c.OpenOnly))
	if len(subjects) == 0 {
		ctx.Println("No courses found.")
		return nil
	}

	for _, s := range subjects {
		ctx.Printf("%s  %s\n", s.code, s.name)
		for _, sec := range s.sections {
			line := "  sec " + sec.Section + "  " + describeWindows(sec)
			if sec.Instructor != "" {
				line += "  " + sec.Instructor
			}
			if sec.Status != "" {
				line += "  " + string(sec.Status)
			}
			if period := sec.ExamPeriod(); period != "" {
				line += "  exam " + period
			}
			if p.IsPlaced(sec.ID) {
				line += "  [placed]"
			}
			if c.ShowIDs {
				line += "  (" + sec.ID + ")"
			}
			ctx.Println(line)
		}
	}
	return nil
}

func filterCourses(courses []models.Course, codePrefix string, openOnly bool) []models.Course {
	var out []models.Course
	prefix := strings.ToUpper(codePrefix)
	for _, c := range courses {
		if prefix != "" && !strings.HasPrefix(strings.ToUpper(c.Code), prefix) {
			continue
		}
		if openOnly && c.Status == models.StatusClosed {
			continue
		}
		out = append(out, c)
	}
	return out
}

// groupSubjects keeps subjects in order of first appearance.
func groupSubjects(courses []models.Course) []subject {
	var subjects []subject
	index := make(map[string]int)
	for _, c := range courses {
		key := c.SubjectKey()
		i, ok := index[key]
		if !ok {
			i = len(subjects)
			index[key] = i
			subjects = append(subjects, subject{code: c.Code, name: c.Name})
		}
		subjects[i].sections = append(subjects[i].sections, c)
	}
	return subjects
}
