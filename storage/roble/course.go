package roble

import (
	"context"

	"github.com/google/uuid"

	"github.com/openlab-uninorte/aula/core/course"
)

const (
	coursesTable    = "courses"
	categoriesTable = "categories"
)

// CourseRepository stores courses and their categories in Roble tables.
type CourseRepository struct {
	client *Client
}

var _ course.Repository = (*CourseRepository)(nil)

func NewCourseRepository(client *Client) *CourseRepository {
	return &CourseRepository{client: client}
}

// decodeCourse maps a raw row onto a Course. Aliases, newest first:
// name|Name|Nombre, students|Students|StudentsNames.
func decodeCourse(rec Record) course.Course {
	c := course.Course{
		ID:          rec.String(idColumn, "id"),
		Name:        rec.String("name", "Name", "Nombre"),
		Description: rec.String("description", "Description"),
		Teacher:     rec.String("teacher", "Teacher"),
		Students:    rec.StringSlice("students", "Students", "StudentsNames"),
	}
	if c.Students == nil {
		c.Students = []string{}
	}
	return c
}

func (repo *CourseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	c.ID = uuid.New().String()
	err := repo.client.Insert(ctx, coursesTable, map[string]interface{}{
		idColumn:      c.ID,
		"name":        c.Name,
		"description": c.Description,
		"teacher":     c.Teacher,
		"students":    c.Students,
	})
	if err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (repo *CourseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	recs, err := repo.client.Read(ctx, coursesTable, nil)
	if err != nil {
		return nil, err
	}
	courses := make([]course.Course, 0, len(recs))
	for _, rec := range recs {
		courses = append(courses, decodeCourse(rec))
	}
	return courses, nil
}

func (repo *CourseRepository) QueryCoursesByTeacher(ctx context.Context, teacher string) ([]course.Course, error) {
	recs, err := repo.client.Read(ctx, coursesTable, map[string]string{"teacher": teacher})
	if err != nil {
		return nil, err
	}
	courses := make([]course.Course, 0, len(recs))
	for _, rec := range recs {
		courses = append(courses, decodeCourse(rec))
	}
	return courses, nil
}

func (repo *CourseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	recs, err := repo.client.Read(ctx, coursesTable, map[string]string{idColumn: id})
	if err != nil {
		return course.Course{}, err
	}
	if len(recs) == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return decodeCourse(recs[0]), nil
}

func (repo *CourseRepository) UpdateCourse(ctx context.Context, c course.Course) error {
	return repo.client.Update(ctx, coursesTable, c.ID, map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
		"students":    c.Students,
	})
}

func (repo *CourseRepository) DeleteCourseByID(ctx context.Context, id string) error {
	return repo.client.Delete(ctx, coursesTable, id)
}

// decodeCategory maps a raw row onto a Category. Aliases, newest first:
// course|CourseID, is_random_selection|IsRandom, group_size|CourseSize.
func decodeCategory(rec Record) course.Category {
	return course.Category{
		ID:                rec.String(idColumn, "id"),
		Name:              rec.String("name", "Name"),
		CourseID:          rec.String("course", "CourseID", "course_id"),
		IsRandomSelection: rec.Bool("is_random_selection", "IsRandom"),
		GroupSize:         rec.Int("group_size", "CourseSize"),
	}
}

func (repo *CourseRepository) CreateCategory(ctx context.Context, cat course.Category) (course.Category, error) {
	cat.ID = uuid.New().String()
	err := repo.client.Insert(ctx, categoriesTable, map[string]interface{}{
		idColumn:              cat.ID,
		"name":                cat.Name,
		"course":              cat.CourseID,
		"is_random_selection": cat.IsRandomSelection,
		"group_size":          cat.GroupSize,
	})
	if err != nil {
		return course.Category{}, err
	}
	return cat, nil
}

func (repo *CourseRepository) GetCategoryByID(ctx context.Context, id string) (course.Category, error) {
	recs, err := repo.client.Read(ctx, categoriesTable, map[string]string{idColumn: id})
	if err != nil {
		return course.Category{}, err
	}
	if len(recs) == 0 {
		return course.Category{}, course.ErrCategoryNotFound
	}
	return decodeCategory(recs[0]), nil
}

func (repo *CourseRepository) QueryCategoriesByCourse(ctx context.Context, courseID string) ([]course.Category, error) {
	recs, err := repo.client.Read(ctx, categoriesTable, map[string]string{"course": courseID})
	if err != nil {
		return nil, err
	}
	cats := make([]course.Category, 0, len(recs))
	for _, rec := range recs {
		cats = append(cats, decodeCategory(rec))
	}
	return cats, nil
}

func (repo *CourseRepository) UpdateCategory(ctx context.Context, cat course.Category) error {
	return repo.client.Update(ctx, categoriesTable, cat.ID, map[string]interface{}{
		"name":                cat.Name,
		"is_random_selection": cat.IsRandomSelection,
		"group_size":          cat.GroupSize,
	})
}

func (repo *CourseRepository) DeleteCategoryByID(ctx context.Context, id string) error {
	return repo.client.Delete(ctx, categoriesTable, id)
}
