package catalog

import (
	"context"
	"fmt"
	"sync"

	"course-catalog-go/internal/model"
	log "github.com/sirupsen/logrus"
)

// CourseService is the part of the API client the catalog drives.
type CourseService interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	CreateCourse(ctx context.Context, fields model.CourseFields) (model.Course, error)
	UpdateCourse(ctx context.Context, id string, fields model.CourseFields) error
	DeleteCourse(ctx context.Context, id string) error
	Enroll(ctx context.Context, id string) error
	Unenroll(ctx context.Context, id string) error
}

type Status int

const (
	Loading Status = iota
	Empty
	Populated
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	default:
		return "populated"
	}
}

// View is a snapshot of what should be on screen.
type View struct {
	Status  Status
	Search  string
	Courses []model.Course
	// Loaded is false until the first fetch succeeds. An Empty view that is
	// not Loaded means every fetch so far has failed.
	Loaded bool
}

// Catalog is the viewer's course collection. Every mutation is followed by
// a full refetch; local state is never patched.
//
// Fetches are numbered as they are issued. A completed fetch replaces the
// collection only if it is newer than the one last applied, so a slow,
// superseded fetch cannot overwrite a fresher result.
type Catalog struct {
	service CourseService

	mu      sync.Mutex
	courses []model.Course
	loaded  bool
	search  string
	issued  uint64
	applied uint64
	loading bool
}

func New(service CourseService) *Catalog {
	return &Catalog{service: service}
}

// Refresh fetches the whole collection and returns the filtered view.
func (c *Catalog) Refresh(ctx context.Context) (View, error) {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.loading = true
	c.mu.Unlock()

	courses, err := c.service.ListCourses(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq == c.issued {
		c.loading = false
	}

	if err != nil {
		return c.viewLocked(), fmt.Errorf("fetching courses: %w", err)
	}

	if seq > c.applied {
		c.applied = seq
		c.courses = courses
		c.loaded = true
	} else {
		log.WithFields(log.Fields{"fetch": seq, "applied": c.applied}).Debug("discarding stale course fetch")
	}

	return c.viewLocked(), nil
}

// Search sets the search term and refetches.
func (c *Catalog) Search(ctx context.Context, term string) (View, error) {
	c.mu.Lock()
	c.search = term
	c.mu.Unlock()

	return c.Refresh(ctx)
}

func (c *Catalog) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Catalog) viewLocked() View {
	view := View{
		Search:  c.search,
		Courses: Filter(c.courses, c.search),
		Loaded:  c.loaded,
	}

	switch {
	case c.loading || c.issued == 0:
		view.Status = Loading
	case len(view.Courses) == 0:
		view.Status = Empty
	default:
		view.Status = Populated
	}

	return view
}

// Course looks a course up in the last applied collection.
func (c *Catalog) Course(id string) (model.Course, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Find(c.courses, id)
}

func (c *Catalog) Create(ctx context.Context, form model.CourseForm) (model.Course, error) {
	fields, err := ParseForm(form)
	if err != nil {
		return model.Course{}, err
	}

	created, err := c.service.CreateCourse(ctx, fields)
	if err != nil {
		return model.Course{}, fmt.Errorf("creating course: %w", err)
	}

	if _, err := c.Refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Edit replaces every field of course id with the form's values.
func (c *Catalog) Edit(ctx context.Context, id string, form model.CourseForm) error {
	fields, err := ParseForm(form)
	if err != nil {
		return err
	}

	return c.mutate(ctx, "updating course", func() error {
		return c.service.UpdateCourse(ctx, id, fields)
	})
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, "deleting course", func() error {
		return c.service.DeleteCourse(ctx, id)
	})
}

func (c *Catalog) Enroll(ctx context.Context, id string) error {
	return c.mutate(ctx, "enrolling", func() error {
		return c.service.Enroll(ctx, id)
	})
}

func (c *Catalog) Unenroll(ctx context.Context, id string) error {
	return c.mutate(ctx, "unenrolling", func() error {
		return c.service.Unenroll(ctx, id)
	})
}

// ToggleEnrollment enrolls or unenrolls depending on what the viewer last
// saw. The new state shows up only after the refetch.
func (c *Catalog) ToggleEnrollment(ctx context.Context, course model.Course) error {
	if course.IsEnrolled {
		return c.Unenroll(ctx, course.ID)
	}
	return c.Enroll(ctx, course.ID)
}

func (c *Catalog) mutate(ctx context.Context, action string, request func() error) error {
	if err := request(); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	_, err := c.Refresh(ctx)
	return err
}
