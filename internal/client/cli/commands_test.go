package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/codelife/internal/client/api"
	"github.com/dmitrijs2005/codelife/internal/client/refdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["profile"] = `{"uid":"u1","email":"ada@example.com","email_verified":false}`
	ta.api.replies["progress"] = `{"courses_completed":2,"labs_completed":5}`

	require.NoError(t, ta.Dashboard(context.Background()))

	out := ta.out.String()
	assert.Contains(t, out, "Email: ada@example.com")
	assert.Contains(t, out, "Status: Pending")
	assert.Contains(t, out, "Courses completed: 2")
	assert.Contains(t, out, "Labs completed:    5")
}

func TestDashboard_Error(t *testing.T) {
	ta := newTestApp(true)
	ta.api.errs["progress"] = &api.APIError{Status: 500, Message: "API request failed"}

	err := ta.Dashboard(context.Background())
	require.EqualError(t, err, "API request failed")
	assert.Empty(t, ta.out.String(), "nothing rendered on failure")
}

func TestCourses(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["courses"] = `[{"id":"web-101","title":"Web Basics","difficulty":"Beginner","lesson_count":4,"duration_hours":3}]`

	require.NoError(t, ta.Courses(context.Background()))
	assert.Contains(t, ta.out.String(), "web-101")
	assert.Contains(t, ta.out.String(), "Web Basics")
}

func TestCourses_Empty(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["courses"] = `[]`

	require.NoError(t, ta.Courses(context.Background()))
	assert.Contains(t, ta.out.String(), "No courses available yet.")
}

func TestCourse_Progress(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["course web-101"] = `{"id":"web-101","title":"Web Basics","lessons":[
		{"id":"l1","title":"HTTP","completed":true},
		{"id":"l2","title":"Cookies","completed":true},
		{"id":"l3","title":"XSS","completed":false},
		{"id":"l4","title":"CSRF"}]}`

	require.NoError(t, ta.Course(context.Background(), "web-101"))
	assert.Contains(t, ta.out.String(), "50% (2/4 lessons)")
}

func TestComplete(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["complete web-101/l3"] = `{"message":"Lesson marked as complete"}`

	require.NoError(t, ta.Complete(context.Background(), "web-101", "l3"))
	assert.Contains(t, ta.out.String(), "[OK] Lesson marked as complete")
}

func TestSummary_Achievements(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["summary"] = `{"courses_completed":0,"lessons_completed":5,"total_lessons":20}`

	require.NoError(t, ta.Summary(context.Background()))

	out := ta.out.String()
	assert.Contains(t, out, "Lessons completed: 5 / 20")
	assert.Contains(t, out, " 25%")
	assert.Regexp(t, `First Steps\s+Complete your first lesson\s+unlocked`, out)
	assert.Regexp(t, `Learning Enthusiast\s+Complete 5 lessons\s+unlocked`, out)
	assert.Regexp(t, `Course Master\s+Complete an entire course\s+locked`, out)
	assert.Regexp(t, `Knowledge Seeker\s+Complete 10 lessons\s+locked`, out)
}

func TestSummary_UsesBackendPercentage(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["summary"] = `{"courses_completed":1,"lessons_completed":3,"total_lessons":4,"progress_percentage":80}`

	require.NoError(t, ta.Summary(context.Background()))
	assert.Contains(t, ta.out.String(), " 80%")
}

func TestMyCourses(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["mycourses"] = `{"enrolled_courses":[{"title":"Web Basics","description":"Start here"},"Network Recon"]}`

	require.NoError(t, ta.MyCourses(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "Start here")
	assert.Contains(t, out, "Network Recon")
	assert.Contains(t, out, "No description provided.")
}

func TestMyCourses_None(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["mycourses"] = `{"enrolled_courses":[]}`

	require.NoError(t, ta.MyCourses(context.Background()))
	assert.Contains(t, ta.out.String(), "You are not enrolled in any courses yet.")
}

func TestProfile(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["profile"] = `{"uid":"u1","email":"ada@example.com","country":"Latvia"}`

	require.NoError(t, ta.Profile(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "country:")
	assert.Contains(t, out, "Latvia")
}

func TestProfileSet_NothingToUpdate(t *testing.T) {
	ta := newTestApp(true)
	ta.reader = rdr("\n")
	stubInputs(t, []string{"", ""})

	require.NoError(t, ta.ProfileSet(context.Background()))
	assert.Nil(t, ta.api.profile)
	assert.Contains(t, ta.out.String(), "Nothing to update.")
}

func TestProfileSet(t *testing.T) {
	ta := newTestApp(true)
	ta.reader = rdr("Red teamer.\nCTF fan.\n\n")
	stubInputs(t, []string{"Ada", ""})

	require.NoError(t, ta.ProfileSet(context.Background()))
	require.NotNil(t, ta.api.profile)
	assert.Equal(t, api.ProfileUpdate{DisplayName: "Ada", Bio: "Red teamer.\nCTF fan."}, *ta.api.profile)
}

func TestScan(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["scan nmap"] = `{"output":"22/tcp open ssh","target":"10.0.0.1"}`

	require.NoError(t, ta.Scan(context.Background(), "NMAP", "10.0.0.1", "-sV"))
	require.NotNil(t, ta.api.scan)
	assert.Equal(t, api.ScanRequest{Target: "10.0.0.1", Options: "-sV"}, *ta.api.scan)
	assert.Contains(t, ta.out.String(), "22/tcp open ssh")
	assert.Contains(t, ta.out.String(), "[OK] nmap scan finished")
}

func TestScan_UnknownTool(t *testing.T) {
	ta := newTestApp(true)

	require.Error(t, ta.Scan(context.Background(), "hydra", "10.0.0.1", ""))
	assert.Empty(t, ta.api.calls)
}

func TestThreats(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["threats"] = `{"success":true,"count":1,"threats":[{"type":"malware","severity":"High","source":"otx",
		"description":"Ransomware campaign","indicators":["hash_abc123","192.168.1.100","evil.example"],"timestamp":"2026-01-01T10:00:00"}]}`

	require.NoError(t, ta.Threats(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "Ransomware campaign")
	assert.Contains(t, out, "hash_abc123, 192.168.1.100 +1")
}

func TestThreats_Empty(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["threats"] = `{"success":true,"count":0,"threats":[]}`

	require.NoError(t, ta.Threats(context.Background()))
	assert.Contains(t, ta.out.String(), "No threats recorded yet.")
}

func TestThreatStats(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["threat-stats"] = `{"total":4,"by_severity":{"High":2,"Medium":1,"Low":1},"by_source":{"otx":3,"abuse.ch":1}}`

	require.NoError(t, ta.ThreatStats(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "Total: 4")
	assert.Regexp(t, `High\s+2`, out)
	assert.Contains(t, out, "abuse.ch")
}

func TestThreatRefresh(t *testing.T) {
	ta := newTestApp(true)
	ta.api.replies["threat-refresh"] = `{"message":"Threats refreshed","count":4}`

	require.NoError(t, ta.ThreatRefresh(context.Background()))
	assert.Contains(t, ta.out.String(), "[OK] Threats refreshed (4 new)")
}

func TestLookups(t *testing.T) {
	ta := newTestApp(false)
	state := "Otago"
	ta.lookup.countries = []string{"Estonia", "Latvia"}
	ta.lookup.states = []string{"Riga"}
	ta.lookup.unis = []refdata.University{{Name: "University of Otago", State: &state, WebPages: []string{"https://www.otago.ac.nz/"}}}
	ctx := context.Background()

	require.NoError(t, ta.Countries(ctx))
	require.NoError(t, ta.States(ctx, "Latvia"))
	require.NoError(t, ta.Universities(ctx, "New Zealand"))

	out := ta.out.String()
	assert.Contains(t, out, "Estonia, Latvia")
	assert.Contains(t, out, "2 countries")
	assert.Contains(t, out, "Riga")
	assert.Contains(t, out, "https://www.otago.ac.nz/")
}

func TestLookups_Empty(t *testing.T) {
	ta := newTestApp(false)
	ctx := context.Background()

	require.NoError(t, ta.States(ctx, "Atlantis"))
	require.NoError(t, ta.Universities(ctx, "Atlantis"))
	assert.Contains(t, ta.out.String(), "No states listed for Atlantis.")
	assert.Contains(t, ta.out.String(), "No universities listed for Atlantis.")
}
