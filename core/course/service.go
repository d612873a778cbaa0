package course

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrAlreadyJoined    = errors.New("student already joined this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacher string) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, c Course) error
		DeleteCourseByID(ctx context.Context, id string) error

		CreateCategory(ctx context.Context, cat Category) (Category, error)
		GetCategoryByID(ctx context.Context, id string) (Category, error)
		QueryCategoriesByCourse(ctx context.Context, courseID string) ([]Category, error)
		UpdateCategory(ctx context.Context, cat Category) error
		DeleteCategoryByID(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, teacher string, nc NewCourse) (Course, error) {
	c := Course{
		Name:        nc.Name,
		Description: nc.Description,
		Teacher:     teacher,
		Students:    []string{},
	}
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacher string) ([]Course, error) {
	return svc.repo.QueryCoursesByTeacher(ctx, teacher)
}

// QueryByStudent returns the courses a student is enrolled in.
func (svc *Service) QueryByStudent(ctx context.Context, student string) ([]Course, error) {
	all, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	courses := make([]Course, 0, len(all))
	for _, c := range all {
		if c.HasStudent(student) {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	c.Name = uc.Name
	c.Description = uc.Description
	if err = svc.repo.UpdateCourse(ctx, c); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourseByID(ctx, id)
}

// Join enrolls a student into a course.
func (svc *Service) Join(ctx context.Context, id, student string) (Course, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if c.HasStudent(student) {
		return Course{}, ErrAlreadyJoined
	}
	c.Students = append(c.Students, student)
	if err = svc.repo.UpdateCourse(ctx, c); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	cat := Category{
		Name:              nc.Name,
		CourseID:          nc.CourseID,
		IsRandomSelection: nc.IsRandomSelection,
		GroupSize:         nc.GroupSize,
	}
	return svc.repo.CreateCategory(ctx, cat)
}

func (svc *Service) QueryCategories(ctx context.Context, courseID string) ([]Category, error) {
	return svc.repo.QueryCategoriesByCourse(ctx, courseID)
}

func (svc *Service) GetCategoryByID(ctx context.Context, id string) (Category, error) {
	return svc.repo.GetCategoryByID(ctx, id)
}

func (svc *Service) UpdateCategory(ctx context.Context, id string, uc UpdateCategory) (Category, error) {
	cat, err := svc.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	cat.Name = uc.Name
	cat.IsRandomSelection = uc.IsRandomSelection
	cat.GroupSize = uc.GroupSize
	if err = svc.repo.UpdateCategory(ctx, cat); err != nil {
		return Category{}, err
	}
	return cat, nil
}

func (svc *Service) DeleteCategory(ctx context.Context, id string) error {
	return svc.repo.DeleteCategoryByID(ctx, id)
}
