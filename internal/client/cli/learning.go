package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/codelife/internal/output"
)

// Dashboard shows the profile card and the progress counters side by side.
func (a *App) Dashboard(ctx context.Context) error {
	d, err := a.api.LoadDashboard(ctx)
	if err != nil {
		return err
	}

	profile := asMap(d.Profile)
	a.printer.Header("Profile")
	a.printer.Print("Email: %s", str(profile, "email"))
	a.printer.Print("UID:   %s", str(profile, "uid"))
	if _, ok := profile["email_verified"]; ok {
		status := "Pending"
		if boolField(profile, "email_verified") {
			status = "✓ Verified"
		}
		a.printer.Print("Status: %s", status)
	}

	progress := asMap(d.Progress)
	a.printer.Header("Progress")
	a.printer.Print("Courses completed: %d", num(progress, "courses_completed"))
	a.printer.Print("Labs completed:    %d", num(progress, "labs_completed"))
	return nil
}

// Courses lists the catalogue.
func (a *App) Courses(ctx context.Context) error {
	v, err := a.api.ListCourses(ctx)
	if err != nil {
		return err
	}

	courses := asList(v)
	if len(courses) == 0 {
		a.printer.Info("No courses available yet.")
		return nil
	}

	t := output.NewTable(a.printer.Out(), []string{"id", "title", "difficulty", "lessons", "hours"})
	for _, c := range courses {
		m := asMap(c)
		t.AddRow(str(m, "id"), str(m, "title"), str(m, "difficulty"), str(m, "lesson_count"), str(m, "duration_hours"))
	}
	return t.Render()
}

// Course shows one course with its lessons and completion.
func (a *App) Course(ctx context.Context, courseID string) error {
	v, err := a.api.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}

	course := asMap(v)
	a.printer.Header(str(course, "title"))
	if d := str(course, "description"); d != "" {
		a.printer.Print("%s", d)
	}

	lessons := asList(course["lessons"])
	done := 0
	t := output.NewTable(a.printer.Out(), []string{"", "id", "lesson", "minutes"})
	for _, l := range lessons {
		m := asMap(l)
		mark := " "
		if boolField(m, "completed") {
			mark = "✓"
			done++
		}
		t.AddRow(mark, str(m, "id"), str(m, "title"), str(m, "duration_minutes"))
	}
	if t.Len() > 0 {
		if err := t.Render(); err != nil {
			return err
		}
	}

	pct := percent(done, len(lessons))
	a.printer.Print("%s %d%% (%d/%d lessons)", a.printer.Bar(pct, 20), pct, done, len(lessons))
	return nil
}

// Complete marks a lesson as done.
func (a *App) Complete(ctx context.Context, courseID, lessonID string) error {
	v, err := a.api.CompleteLesson(ctx, courseID, lessonID)
	if err != nil {
		return err
	}

	msg := firstOf(asMap(v), "message", "detail")
	if msg == "" {
		msg = fmt.Sprintf("Lesson %s marked as complete", lessonID)
	}
	a.printer.Success("%s", msg)
	return nil
}

// Summary shows overall progress and the achievements it unlocks.
func (a *App) Summary(ctx context.Context) error {
	v, err := a.api.GetProgressSummary(ctx)
	if err != nil {
		return err
	}

	s := asMap(v)
	lessons := num(s, "lessons_completed")
	courses := num(s, "courses_completed")
	total := num(s, "total_lessons")

	pct := percent(lessons, total)
	if _, ok := s["progress_percentage"]; ok {
		pct = percent(num(s, "progress_percentage"), 100)
	}

	a.printer.Header("Progress")
	a.printer.Print("Courses completed: %d", courses)
	a.printer.Print("Lessons completed: %d / %d", lessons, total)
	a.printer.Print("%s %d%%", a.printer.Bar(pct, 30), pct)

	a.printer.Header("Achievements")
	for _, ach := range achievements(lessons, courses) {
		state := "locked"
		if ach.Unlocked {
			state = "unlocked"
		}
		a.printer.Print("%s %-20s %-30s %s", ach.Icon, ach.Title, ach.Description, state)
	}
	return nil
}

// MyCourses lists the courses the user is enrolled in.
func (a *App) MyCourses(ctx context.Context) error {
	v, err := a.api.GetUserCourses(ctx)
	if err != nil {
		return err
	}

	var courses []any
	if m := asMap(v); m != nil {
		courses = asList(m["enrolled_courses"])
	} else {
		courses = asList(v)
	}

	if len(courses) == 0 {
		a.printer.Info("You are not enrolled in any courses yet.")
		return nil
	}

	t := output.NewTable(a.printer.Out(), []string{"course", "description"})
	for _, c := range courses {
		// entries are either course objects or bare titles
		if title, ok := c.(string); ok {
			t.AddRow(title, "No description provided.")
			continue
		}
		m := asMap(c)
		desc := str(m, "description")
		if desc == "" {
			desc = "No description provided."
		}
		t.AddRow(firstOf(m, "title", "id"), truncate(desc, 60))
	}
	return t.Render()
}
