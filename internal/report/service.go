package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/frahmantamala/training-tracker/internal/employee"
)

type CourseSource interface {
	Describe(ctx context.Context, id string) (*course.CourseResponse, error)
}

// Document is a rendered export ready to be sent to the client.
type Document struct {
	Filename    string
	ContentType string
	Body        *bytes.Buffer
}

type Service struct {
	courses CourseSource
	logger  *slog.Logger
}

func NewService(courses CourseSource, logger *slog.Logger) *Service {
	return &Service{courses: courses, logger: logger}
}

func (s *Service) Excel(ctx context.Context, courseID string) (*Document, error) {
	c, err := s.courses.Describe(ctx, courseID)
	if err != nil {
		return nil, err
	}

	buf, err := WriteWorkbook(c)
	if err != nil {
		s.logger.Error("failed to build workbook", "error", err, "course_id", courseID)
		return nil, err
	}

	s.logger.Info("excel report generated", "course_id", courseID, "rows", len(c.Attendance))
	return &Document{
		Filename:    filename(c, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Body:        buf,
	}, nil
}

func (s *Service) PDF(ctx context.Context, courseID string) (*Document, error) {
	c, err := s.courses.Describe(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WritePDF(c, &buf); err != nil {
		s.logger.Error("failed to build pdf", "error", err, "course_id", courseID)
		return nil, err
	}

	s.logger.Info("pdf report generated", "course_id", courseID, "rows", len(c.Attendance))
	return &Document{
		Filename:    filename(c, "pdf"),
		ContentType: "application/pdf",
		Body:        &buf,
	}, nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9]+`)

func filename(c *course.CourseResponse, ext string) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(employee.StripDiacritics(c.Name), "_"), "_")
	if name == "" {
		name = "course"
	}
	return fmt.Sprintf("%s_%s.%s", name, c.StartDate, ext)
}
