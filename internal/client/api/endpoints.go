package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
	"github.com/dmitrijs2005/codelife/internal/validation"
)

// ScanTool names a pentesting tool the backend can run.
type ScanTool string

const (
	ToolNmap  ScanTool = "nmap"
	ToolNikto ScanTool = "nikto"
	ToolDirb  ScanTool = "dirb"
)

// ScanTools lists the supported tools in display order.
var ScanTools = []ScanTool{ToolNmap, ToolNikto, ToolDirb}

func ParseScanTool(s string) (ScanTool, error) {
	t := ScanTool(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ScanTools {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown scan tool %q (want nmap, nikto or dirb)", s)
}

// ScanRequest is the body sent to /pentest/{tool}.
type ScanRequest struct {
	Target  string `json:"target" validate:"required,max=253"`
	Options string `json:"options,omitempty" validate:"max=256"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are not
// sent.
type ProfileUpdate struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=64"`
	Country     string `json:"country,omitempty" validate:"omitempty,max=64"`
	State       string `json:"state,omitempty" validate:"omitempty,max=64"`
	University  string `json:"university,omitempty" validate:"omitempty,max=128"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=512"`
}

// checkInput gates on the session before validating v, so a signed-out
// caller always gets an *identity.AuthError.
func (c *Client) checkInput(v any) error {
	if c.session.Current() == nil {
		return identity.NotAuthenticated()
	}
	return validation.Struct(v)
}

type courseRef struct {
	CourseID string `json:"course_id" validate:"required"`
}

type lessonRef struct {
	CourseID string `json:"course_id" validate:"required"`
	LessonID string `json:"lesson_id" validate:"required"`
}

func (c *Client) GetUserProfile(ctx context.Context) (any, error) {
	return c.Request(ctx, "/user/profile", RequestOptions{})
}

func (c *Client) GetUserProgress(ctx context.Context) (any, error) {
	return c.Request(ctx, "/user/progress", RequestOptions{})
}

func (c *Client) GetUserCourses(ctx context.Context) (any, error) {
	return c.Request(ctx, "/user/courses", RequestOptions{})
}

func (c *Client) UpdateUserProfile(ctx context.Context, p ProfileUpdate) (any, error) {
	if err := c.checkInput(p); err != nil {
		return nil, err
	}
	return c.Request(ctx, "/user/profile", RequestOptions{Method: http.MethodPut, Body: p})
}

func (c *Client) ListCourses(ctx context.Context) (any, error) {
	return c.Request(ctx, "/courses/", RequestOptions{})
}

func (c *Client) GetCourse(ctx context.Context, courseID string) (any, error) {
	if err := c.checkInput(courseRef{CourseID: strings.TrimSpace(courseID)}); err != nil {
		return nil, err
	}
	return c.Request(ctx, "/courses/"+url.PathEscape(courseID), RequestOptions{})
}

func (c *Client) CompleteLesson(ctx context.Context, courseID, lessonID string) (any, error) {
	ref := lessonRef{CourseID: strings.TrimSpace(courseID), LessonID: strings.TrimSpace(lessonID)}
	if err := c.checkInput(ref); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("/courses/%s/lessons/%s/complete", url.PathEscape(courseID), url.PathEscape(lessonID))
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodPost})
}

func (c *Client) GetProgressSummary(ctx context.Context) (any, error) {
	return c.Request(ctx, "/courses/progress/summary", RequestOptions{})
}

func (c *Client) RunScan(ctx context.Context, tool ScanTool, req ScanRequest) (any, error) {
	if c.session.Current() == nil {
		return nil, identity.NotAuthenticated()
	}
	if _, err := ParseScanTool(string(tool)); err != nil {
		return nil, err
	}
	if err := c.checkInput(req); err != nil {
		return nil, err
	}
	return c.Request(ctx, "/pentest/"+string(tool), RequestOptions{Method: http.MethodPost, Body: req})
}

func (c *Client) LatestThreats(ctx context.Context) (any, error) {
	return c.Request(ctx, "/threats/latest", RequestOptions{})
}

func (c *Client) ThreatStats(ctx context.Context) (any, error) {
	return c.Request(ctx, "/threats/stats", RequestOptions{})
}

func (c *Client) RefreshThreats(ctx context.Context) (any, error) {
	return c.Request(ctx, "/threats/refresh", RequestOptions{Method: http.MethodPost})
}
