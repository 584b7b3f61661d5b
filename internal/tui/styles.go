package tui

import (
	"fmt"
	"strings"

	"course-catalog-go/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1a237e"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#637381"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("#2196F3"))

	enrolledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
)

func renderCard(course model.Course, selected bool, width int) string {
	title := titleStyle.Render(course.Title)
	if course.IsEnrolled {
		title += " " + enrolledStyle.Render("[enrolled]")
	}

	lines := []string{
		title,
		mutedStyle.Render(course.Description),
		fmt.Sprintf("Instructor: %s   Semester: %s", course.Instructor, course.Semester),
		fmt.Sprintf("Code: %s   Credits: %d   Enrolled Students: %d", course.CourseCode, course.Credits, course.EnrolledCount),
	}
	if course.Prerequisites != "" {
		lines = append(lines, "Prerequisites: "+course.Prerequisites)
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}
