package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"course-catalog-go/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(19)
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return usagef("unknown output format %q, want table, json or yaml", format)
}

func writeCourses(out io.Writer, format string, courses []model.Course) error {
	if courses == nil {
		courses = []model.Course{}
	}

	switch format {
	case formatJSON:
		return writeJSON(out, courses)
	case formatYAML:
		return writeYAML(out, courses)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CODE", "TITLE", "INSTRUCTOR", "SEMESTER", "CREDITS", "ENROLLED", "").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, course := range courses {
		marker := ""
		if course.IsEnrolled {
			marker = "enrolled"
		}
		t.Row(
			course.ID,
			course.CourseCode,
			course.Title,
			course.Instructor,
			course.Semester,
			strconv.Itoa(course.Credits),
			strconv.Itoa(course.EnrolledCount),
			marker,
		)
	}

	_, err := fmt.Fprintln(out, t.Render())
	return err
}

func writeCourse(out io.Writer, format string, course model.Course) error {
	switch format {
	case formatJSON:
		return writeJSON(out, course)
	case formatYAML:
		return writeYAML(out, course)
	}

	rows := [][2]string{
		{"ID", course.ID},
		{"Title", course.Title},
		{"Description", course.Description},
		{"Instructor", course.Instructor},
		{"Semester", course.Semester},
		{"Code", course.CourseCode},
		{"Credits", strconv.Itoa(course.Credits)},
		{"Enrolled Students", strconv.Itoa(course.EnrolledCount)},
	}
	if course.Prerequisites != "" {
		rows = append(rows, [2]string{"Prerequisites", course.Prerequisites})
	}
	if course.IsEnrolled {
		rows = append(rows, [2]string{"Status", "enrolled"})
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(out, labelStyle.Render(row[0]+":")+row[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func writeYAML(out io.Writer, v any) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return encoder.Close()
}
