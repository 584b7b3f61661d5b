package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"course-catalog-go/internal/apperrors"
	"course-catalog-go/internal/auth"
	"course-catalog-go/internal/catalog"
	"course-catalog-go/internal/model"
	"course-catalog-go/internal/tui"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type command struct {
	name    string
	usage   string
	summary string
	flags   func(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error
}

// usageError marks bad command-line input, as opposed to a failed operation.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

var commands = []command{
	{name: "login", usage: "login [--email=EMAIL] [--password-file=PATH]", summary: "sign in with email and password", flags: loginCommand},
	{name: "signup", usage: "signup [--email=EMAIL]", summary: "create an account and sign in", flags: signupCommand},
	{name: "login-google", usage: "login-google (--credential=TOKEN | --credential-file=PATH)", summary: "sign in with a Google identity token", flags: googleCommand},
	{name: "logout", usage: "logout", summary: "forget the stored session", flags: logoutCommand},
	{name: "whoami", usage: "whoami", summary: "show the signed-in user", flags: whoamiCommand},
	{name: "list", usage: "list [--search=TERM] [--output=table|json|yaml]", summary: "list courses", flags: listCommand},
	{name: "show", usage: "show [--output=table|json|yaml] ID", summary: "show one course", flags: showCommand},
	{name: "create", usage: "create --title=T --description=D --instructor=I --semester=S --code=C --credits=N [--prerequisites=P]", summary: "create a course", flags: createCommand},
	{name: "edit", usage: "edit [--title=T ...] ID", summary: "change fields of a course", flags: editCommand},
	{name: "delete", usage: "delete [--yes] ID", summary: "delete a course", flags: deleteCommand},
	{name: "enroll", usage: "enroll ID", summary: "enroll in a course", flags: enrollmentCommand(true)},
	{name: "unenroll", usage: "unenroll ID", summary: "leave a course", flags: enrollmentCommand(false)},
	{name: "browse", usage: "browse", summary: "open the interactive course browser", flags: browseCommand},
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: catalog [global flags] <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(out, "  %-14s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run \"catalog --help\" for global flags and \"catalog <command> --help\" for command flags.")
}

// run parses the command's flags and invokes it.
func (c command) run(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	action := c.flags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(a.stdout, "Usage: catalog %s\n\n%s", c.usage, fs.FlagUsages())
			return nil
		}
		return &usageError{err: err}
	}

	log.WithField("command", c.name).Debug("running command")
	return action(ctx, a, fs.Args())
}

func loginCommand(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	email := fs.String("email", "", "account email")
	passwordFile := fs.String("password-file", "", "read the password from this file")

	return func(ctx context.Context, a *app, args []string) error {
		if len(args) > 0 {
			return usagef("unexpected argument %q", args[0])
		}

		credentials := auth.Credentials{Email: *email}
		if credentials.Email == "" {
			line, err := a.promptLine("Email: ")
			if err != nil {
				return err
			}
			credentials.Email = line
		}

		var err error
		if *passwordFile != "" {
			credentials.Password, err = readFileValue(*passwordFile)
		} else {
			credentials.Password, err = a.promptSecret("Password: ")
		}
		if err != nil {
			return err
		}

		session, err := a.auth.SignIn(ctx, credentials)
		if err != nil {
			return err
		}

		a.notifier.Success("Signed in as %s", session.User.DisplayName())
		return nil
	}
}

func signupCommand(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	email := fs.String("email", "", "account email")

	return func(ctx context.Context, a *app, args []string) error {
		if len(args) > 0 {
			return usagef("unexpected argument %q", args[0])
		}

		registration := auth.Registration{Email: *email}
		if registration.Email == "" {
			line, err := a.promptLine("Email: ")
			if err != nil {
				return err
			}
			registration.Email = line
		}

		var err error
		if registration.Password, err = a.promptSecret("Password: "); err != nil {
			return err
		}
		if registration.ConfirmPassword, err = a.promptSecret("Confirm password: "); err != nil {
			return err
		}

		session, err := a.auth.SignUp(ctx, registration)
		if err != nil {
			return err
		}

		a.notifier.Success("Account created, signed in as %s", session.User.DisplayName())
		return nil
	}
}

func googleCommand(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	credential := fs.String("credential", "", "Google identity token")
	credentialFile := fs.String("credential-file", "", "read the Google identity token from this file")

	return func(ctx context.Context, a *app, args []string) error {
		if len(args) > 0 {
			return usagef("unexpected argument %q", args[0])
		}

		token := *credential
		if *credentialFile != "" {
			if token != "" {
				return usagef("--credential and --credential-file are mutually exclusive")
			}
			var err error
			if token, err = readFileValue(*credentialFile); err != nil {
				return err
			}
		}
		if token == "" {
			return usagef("a Google credential is required")
		}

		session, err := a.auth.SignInFederated(ctx, token)
		if err != nil {
			return err
		}

		a.notifier.Success("Signed in as %s", session.User.DisplayName())
		return nil
	}
}

func logoutCommand(_ *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	return func(_ context.Context, a *app, _ []string) error {
		if err := a.auth.SignOut(); err != nil {
			return err
		}
		a.notifier.Success("Signed out")
		return nil
	}
}

func whoamiCommand(_ *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	return func(_ context.Context, a *app, _ []string) error {
		session, ok := a.sessions.CurrentSession()
		if !ok {
			fmt.Fprintln(a.stdout, "Not signed in")
			return nil
		}

		fmt.Fprintln(a.stdout, session.User.DisplayName())
		if session.User.Email != "" && session.User.Email != session.User.DisplayName() {
			fmt.Fprintln(a.stdout, session.User.Email)
		}
		return nil
	}
}

func listCommand(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	search := fs.String("search", "", "only courses whose title or description contains TERM")
	output := fs.StringP("output", "o", formatTable, "output format: table, json or yaml")

	return func(ctx context.Context, a *app, args []string) error {
		if len(args) > 0 {
			return usagef("unexpected argument %q", args[0])
		}
		if err := checkFormat(*output); err != nil {
			return err
		}
		if _, err := requireSession(a); err != nil {
			return err
		}

		view, err := a.catalog.Search(ctx, *search)
		if err != nil {
			return err
		}

		if *output == formatTable {
			switch {
			case view.Status == catalog.Empty && view.Search != "":
				fmt.Fprintf(a.stdout, "No courses match %q\n", view.Search)
				return nil
			case view.Status == catalog.Empty:
				fmt.Fprintln(a.stdout, "You haven't created any courses yet")
				return nil
			}
		}

		return writeCourses(a.stdout, *output, view.Courses)
	}
}

func showCommand(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	output := fs.StringP("output", "o", formatTable, "output format: table, json or yaml")

	return func(ctx context.Context, a *app, args []string) error {
		id, err := courseID(args)
		if err != nil {
			return err
		}
		if err := checkFormat(*output); err != nil {
			return err
		}

		course, err := currentCourse(ctx, a, id)
		if err != nil {
			return err
		}

		return writeCourse(a.stdout, *output, course)
	}
}

// courseFlags registers one flag per form field.
func courseFlags(fs *pflag.FlagSet) *model.CourseForm {
	var form model.CourseForm
	fs.StringVar(&form.Title, "title", "", "course title")
	fs.StringVar(&form.Description, "description", "", "course description")
	fs.StringVar(&form.Instructor, "instructor", "", "instructor name")
	fs.StringVar(&form.Semester, "semester", "", "semester, e.g. \"Fall 2025\"")
	fs.StringVar(&form.CourseCode, "code", "", "course code, e.g. CS101")
	fs.StringVar(&form.Credits, "credits", "", "number of credits")
	fs.StringVar(&form.Prerequisites, "prerequisites", "", "prerequisites, free text")
	return &form
}

func createCommand(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	form := courseFlags(fs)

	return func(ctx context.Context, a *app, args []string) error {
		if len(args) > 0 {
			return usagef("unexpected argument %q", args[0])
		}
		if _, err := requireSession(a); err != nil {
			return err
		}

		course, err := a.catalog.Create(ctx, *form)
		if err != nil {
			return err
		}

		a.notifier.Success("Created %s (%s)", course.Title, course.ID)
		return nil
	}
}

func editCommand(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	changes := courseFlags(fs)

	return func(ctx context.Context, a *app, args []string) error {
		id, err := courseID(args)
		if err != nil {
			return err
		}

		course, err := currentCourse(ctx, a, id)
		if err != nil {
			return err
		}

		form := catalog.FormFromCourse(course)
		overrides := map[string]*string{
			"title":         &form.Title,
			"description":   &form.Description,
			"instructor":    &form.Instructor,
			"semester":      &form.Semester,
			"code":          &form.CourseCode,
			"credits":       &form.Credits,
			"prerequisites": &form.Prerequisites,
		}
		values := map[string]string{
			"title":         changes.Title,
			"description":   changes.Description,
			"instructor":    changes.Instructor,
			"semester":      changes.Semester,
			"code":          changes.CourseCode,
			"credits":       changes.Credits,
			"prerequisites": changes.Prerequisites,
		}
		changed := 0
		fs.Visit(func(f *pflag.Flag) {
			if target, ok := overrides[f.Name]; ok {
				*target = values[f.Name]
				changed++
			}
		})
		if changed == 0 {
			return usagef("nothing to change, pass at least one field flag")
		}

		if err := a.catalog.Edit(ctx, id, form); err != nil {
			return err
		}

		a.notifier.Success("Updated %s", strings.TrimSpace(form.Title))
		return nil
	}
}

func deleteCommand(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	yes := fs.BoolP("yes", "y", false, "do not ask for confirmation")

	return func(ctx context.Context, a *app, args []string) error {
		id, err := courseID(args)
		if err != nil {
			return err
		}

		course, err := currentCourse(ctx, a, id)
		if err != nil {
			return err
		}

		if !*yes {
			answer, err := a.promptLine(fmt.Sprintf("Delete %q? [y/N] ", course.Title))
			if err != nil {
				return err
			}
			if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
				fmt.Fprintln(a.stdout, "Cancelled")
				return nil
			}
		}

		if err := a.catalog.Delete(ctx, id); err != nil {
			return err
		}

		a.notifier.Success("Deleted %s", course.Title)
		return nil
	}
}

func enrollmentCommand(enroll bool) func(fs *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	return func(_ *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
		return func(ctx context.Context, a *app, args []string) error {
			id, err := courseID(args)
			if err != nil {
				return err
			}
			if _, err := requireSession(a); err != nil {
				return err
			}

			if enroll {
				if err := a.catalog.Enroll(ctx, id); err != nil {
					return err
				}
			} else if err := a.catalog.Unenroll(ctx, id); err != nil {
				return err
			}

			verb := "Enrolled in"
			if !enroll {
				verb = "Unenrolled from"
			}
			title := id
			if course, ok := a.catalog.Course(id); ok {
				title = course.Title
			}
			a.notifier.Success("%s %s", verb, title)
			return nil
		}
	}
}

func browseCommand(_ *pflag.FlagSet) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, _ []string) error {
		session, err := requireSession(a)
		if err != nil {
			return err
		}
		return tui.Run(ctx, a.catalog, session.User)
	}
}

func requireSession(a *app) (model.Session, error) {
	session, ok := a.sessions.CurrentSession()
	if !ok {
		return model.Session{}, apperrors.Auth("not signed in, run \"catalog login\" first")
	}
	return session, nil
}

func courseID(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", usagef("a course id is required")
	case 1:
		return args[0], nil
	default:
		return "", usagef("unexpected argument %q", args[1])
	}
}

// currentCourse fetches the collection and returns the course with id.
func currentCourse(ctx context.Context, a *app, id string) (model.Course, error) {
	if _, err := requireSession(a); err != nil {
		return model.Course{}, err
	}
	if _, err := a.catalog.Refresh(ctx); err != nil {
		return model.Course{}, err
	}

	course, ok := a.catalog.Course(id)
	if !ok {
		return model.Course{}, apperrors.NotFound(fmt.Sprintf("course %s", id))
	}
	return course, nil
}

func readFileValue(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
