package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/openlab-uninorte/aula/core"
)

type Course struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Teacher     string   `json:"teacher"`
	Students    []string `json:"students"`
}

// HasStudent reports whether the given student is enrolled.
func (c Course) HasStudent(name string) bool {
	for _, s := range c.Students {
		if s == name {
			return true
		}
	}
	return false
}

// Category groups activities within a course. When IsRandomSelection is set,
// groups of GroupSize members are drawn at random from the course roster.
type Category struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	CourseID          string `json:"course_id"`
	IsRandomSelection bool   `json:"is_random_selection"`
	GroupSize         int    `json:"group_size"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name              string `json:"name" validate:"required"`
	CourseID          string `json:"course_id" validate:"required"`
	IsRandomSelection bool   `json:"is_random_selection"`
	GroupSize         int    `json:"group_size" validate:"required_with=IsRandomSelection,omitempty,min=2"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// UpdateCategory defines what information may be provided to modify an existing Category.
type UpdateCategory struct {
	Name              string `json:"name" validate:"required"`
	IsRandomSelection bool   `json:"is_random_selection"`
	GroupSize         int    `json:"group_size" validate:"omitempty,min=2"`
}

func (uc *UpdateCategory) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	return validate.Struct(uc)
}
