package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/codelife/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints_Routes(t *testing.T) {
	b := newBackend(t, respond(http.StatusOK, `{}`))
	c := New(signedIn(), Options{BaseURL: b.srv.URL})
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() (any, error)
		method string
		path   string
	}{
		{"profile", func() (any, error) { return c.GetUserProfile(ctx) }, http.MethodGet, "/user/profile"},
		{"progress", func() (any, error) { return c.GetUserProgress(ctx) }, http.MethodGet, "/user/progress"},
		{"my courses", func() (any, error) { return c.GetUserCourses(ctx) }, http.MethodGet, "/user/courses"},
		{"update profile", func() (any, error) { return c.UpdateUserProfile(ctx, ProfileUpdate{Country: "Latvia"}) }, http.MethodPut, "/user/profile"},
		{"courses", func() (any, error) { return c.ListCourses(ctx) }, http.MethodGet, "/courses/"},
		{"course", func() (any, error) { return c.GetCourse(ctx, "web-101") }, http.MethodGet, "/courses/web-101"},
		{"complete", func() (any, error) { return c.CompleteLesson(ctx, "web-101", "l2") }, http.MethodPost, "/courses/web-101/lessons/l2/complete"},
		{"summary", func() (any, error) { return c.GetProgressSummary(ctx) }, http.MethodGet, "/courses/progress/summary"},
		{"nmap", func() (any, error) { return c.RunScan(ctx, ToolNmap, ScanRequest{Target: "scanme.nmap.org"}) }, http.MethodPost, "/pentest/nmap"},
		{"nikto", func() (any, error) { return c.RunScan(ctx, ToolNikto, ScanRequest{Target: "example.com"}) }, http.MethodPost, "/pentest/nikto"},
		{"dirb", func() (any, error) { return c.RunScan(ctx, ToolDirb, ScanRequest{Target: "http://example.com"}) }, http.MethodPost, "/pentest/dirb"},
		{"latest threats", func() (any, error) { return c.LatestThreats(ctx) }, http.MethodGet, "/threats/latest"},
		{"threat stats", func() (any, error) { return c.ThreatStats(ctx) }, http.MethodGet, "/threats/stats"},
		{"refresh threats", func() (any, error) { return c.RefreshThreats(ctx) }, http.MethodPost, "/threats/refresh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			require.NoError(t, err)

			got := b.last(t)
			assert.Equal(t, tt.method, got.method)
			assert.Equal(t, tt.path, got.path)
		})
	}
}

func TestUpdateUserProfile_SendsOnlySetFields(t *testing.T) {
	b := newBackend(t, respond(http.StatusOK, `{"updated":true}`))
	c := New(signedIn(), Options{BaseURL: b.srv.URL})

	_, err := c.UpdateUserProfile(context.Background(), ProfileUpdate{DisplayName: "Ada", University: "RTU"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"display_name":"Ada","university":"RTU"}`, string(b.last(t).body))
}

func TestUpdateUserProfile_Validation(t *testing.T) {
	b := newBackend(t, respond(http.StatusOK, `{}`))
	c := New(signedIn(), Options{BaseURL: b.srv.URL})

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}

	_, err := c.UpdateUserProfile(context.Background(), ProfileUpdate{DisplayName: string(long)})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "display_name")
	assert.Zero(t, b.hits.Load())
}

func TestRunScan_Body(t *testing.T) {
	b := newBackend(t, respond(http.StatusOK, `{"output":"22/tcp open ssh"}`))
	c := New(signedIn(), Options{BaseURL: b.srv.URL})

	_, err := c.RunScan(context.Background(), ToolNmap, ScanRequest{Target: "10.0.0.5", Options: "-sV"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"target":"10.0.0.5","options":"-sV"}`, string(b.last(t).body))
}

func TestRunScan_Rejects(t *testing.T) {
	b := newBackend(t, respond(http.StatusOK, `{}`))
	c := New(signedIn(), Options{BaseURL: b.srv.URL})
	ctx := context.Background()

	_, err := c.RunScan(ctx, ScanTool("metasploit"), ScanRequest{Target: "10.0.0.5"})
	require.Error(t, err)

	_, err = c.RunScan(ctx, ToolNikto, ScanRequest{})
	require.Error(t, err)

	assert.Zero(t, b.hits.Load())
}

func TestParseScanTool(t *testing.T) {
	got, err := ParseScanTool(" NMAP ")
	require.NoError(t, err)
	assert.Equal(t, ToolNmap, got)

	_, err = ParseScanTool("hydra")
	assert.Error(t, err)
}

func TestCourseIDEscaped(t *testing.T) {
	b := newBackend(t, respond(http.StatusOK, `{}`))
	c := New(signedIn(), Options{BaseURL: b.srv.URL})

	_, err := c.GetCourse(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/courses/a%2Fb", b.last(t).rawPath)
}

func TestCourseIDsRequired(t *testing.T) {
	b := newBackend(t, respond(http.StatusOK, `[]`))
	c := New(signedIn(), Options{BaseURL: b.srv.URL})
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() (any, error)
		field string
	}{
		{"course", func() (any, error) { return c.GetCourse(ctx, "") }, "course_id"},
		{"course blank", func() (any, error) { return c.GetCourse(ctx, "  ") }, "course_id"},
		{"complete no course", func() (any, error) { return c.CompleteLesson(ctx, "", "l1") }, "course_id"},
		{"complete no lesson", func() (any, error) { return c.CompleteLesson(ctx, "web-101", "") }, "lesson_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	assert.Zero(t, b.hits.Load())
}
