package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for the prompt and REPL messages.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	reportError(err error)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	Dashboard(ctx context.Context) error
	Courses(ctx context.Context) error
	Course(ctx context.Context, courseID string) error
	Complete(ctx context.Context, courseID, lessonID string) error
	Summary(ctx context.Context) error
	MyCourses(ctx context.Context) error
	Profile(ctx context.Context) error
	ProfileSet(ctx context.Context) error

	Scan(ctx context.Context, tool, target, options string) error
	Threats(ctx context.Context) error
	ThreatStats(ctx context.Context) error
	ThreatRefresh(ctx context.Context) error

	Countries(ctx context.Context) error
	States(ctx context.Context, country string) error
	Universities(ctx context.Context, country string) error
}

const (
	guestHelp = "Available commands: register, login, countries, states <country>, universities <country>, help, exit"
	userHelp  = "Available commands: dashboard, courses, course <id>, complete <course> <lesson>, summary, mycourses, " +
		"profile, profile-set, scan <nmap|nikto|dirb> <target>, threats, threat-stats, threat-refresh, " +
		"countries, states <country>, universities <country>, whoami, logout, help, exit"
)

// guarded lists the commands that need a signed-in user.
var guarded = map[string]bool{
	"logout": true, "whoami": true, "dashboard": true, "courses": true, "course": true,
	"complete": true, "summary": true, "mycourses": true, "profile": true, "profile-set": true,
	"scan": true, "threats": true, "threat-stats": true, "threat-refresh": true,
}

// usage holds the argument count and hint of commands that take arguments.
var usage = map[string]struct {
	args int
	hint string
}{
	"course":       {1, "Usage: course <id>"},
	"complete":     {2, "Usage: complete <course> <lesson>"},
	"scan":         {2, "Usage: scan <nmap|nikto|dirb> <target> [options]"},
	"states":       {1, "Usage: states <country>"},
	"universities": {1, "Usage: universities <country>"},
}

// runREPL reads commands from scanner until EOF, exit or quit, or until ctx
// ends. Commands that need a session are refused while signed out. A failing
// command is reported and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("codelife (%s)> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if guarded[cmd] && !a.isLoggedIn() {
			printlnFn("Please log in first (login or register).")
			continue
		}
		if u, ok := usage[cmd]; ok && len(args) < u.args {
			printlnFn(u.hint)
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.Whoami(ctx)
		case "dashboard":
			err = a.Dashboard(ctx)
		case "courses":
			err = a.Courses(ctx)
		case "course":
			err = a.Course(ctx, args[0])
		case "complete":
			err = a.Complete(ctx, args[0], args[1])
		case "summary":
			err = a.Summary(ctx)
		case "mycourses":
			err = a.MyCourses(ctx)
		case "profile":
			err = a.Profile(ctx)
		case "profile-set":
			err = a.ProfileSet(ctx)
		case "scan":
			err = a.Scan(ctx, args[0], args[1], strings.Join(args[2:], " "))
		case "threats":
			err = a.Threats(ctx)
		case "threat-stats":
			err = a.ThreatStats(ctx)
		case "threat-refresh":
			err = a.ThreatRefresh(ctx)
		case "countries":
			err = a.Countries(ctx)
		case "states":
			err = a.States(ctx, strings.Join(args, " "))
		case "universities":
			err = a.Universities(ctx, strings.Join(args, " "))
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil && ctx.Err() == nil {
			a.reportError(err)
		}
	}
}
