// Package dummy provides in-memory repository implementations, used in
// tests and when running locally without a Roble project.
package dummy

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openlab-uninorte/aula/core/activity"
	"github.com/openlab-uninorte/aula/core/course"
	"github.com/openlab-uninorte/aula/core/group"
	"github.com/openlab-uninorte/aula/core/user"
)

// DB holds every table in memory behind a single lock.
type DB struct {
	mu         sync.RWMutex
	users      map[string]user.User
	courses    map[string]course.Course
	categories map[string]course.Category
	groups     map[string]group.Group
	activities map[string]activity.Activity
}

func NewDB() *DB {
	return &DB{
		users:      make(map[string]user.User),
		courses:    make(map[string]course.Course),
		categories: make(map[string]course.Category),
		groups:     make(map[string]group.Group),
		activities: make(map[string]activity.Activity),
	}
}

// user.Repository

type UserRepository struct{ db *DB }

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository { return &UserRepository{db: db} }

func (repo *UserRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := func(usr user.User) bool {
		for _, ex := range excludedUsers {
			if ex.ID == usr.ID {
				return true
			}
		}
		return false
	}
	for _, usr := range repo.db.users {
		if excluded(usr) {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *UserRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *UserRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, usr)
	}
	return users, nil
}

func (repo *UserRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *UserRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *UserRepository) GetUserByUsernameOrEmail(_ context.Context, username string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Username == username || usr.Email == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *UserRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *UserRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
	}
	return nil
}

// course.Repository

type CourseRepository struct{ db *DB }

var _ course.Repository = (*CourseRepository)(nil)

func NewCourseRepository(db *DB) *CourseRepository { return &CourseRepository{db: db} }

func (repo *CourseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = uuid.New().String()
	repo.db.courses[c.ID] = c
	return c, nil
}

func (repo *CourseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, c)
	}
	return courses, nil
}

func (repo *CourseRepository) QueryCoursesByTeacher(_ context.Context, teacher string) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var courses []course.Course
	for _, c := range repo.db.courses {
		if c.Teacher == teacher {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (repo *CourseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *CourseRepository) UpdateCourse(_ context.Context, c course.Course) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return course.ErrNotFound
	}
	repo.db.courses[c.ID] = c
	return nil
}

func (repo *CourseRepository) DeleteCourseByID(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.courses, id)
	return nil
}

func (repo *CourseRepository) CreateCategory(_ context.Context, cat course.Category) (course.Category, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cat.ID = uuid.New().String()
	repo.db.categories[cat.ID] = cat
	return cat, nil
}

func (repo *CourseRepository) GetCategoryByID(_ context.Context, id string) (course.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cat, ok := repo.db.categories[id]; ok {
		return cat, nil
	}
	return course.Category{}, course.ErrCategoryNotFound
}

func (repo *CourseRepository) QueryCategoriesByCourse(_ context.Context, courseID string) ([]course.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var cats []course.Category
	for _, cat := range repo.db.categories {
		if cat.CourseID == courseID {
			cats = append(cats, cat)
		}
	}
	return cats, nil
}

func (repo *CourseRepository) UpdateCategory(_ context.Context, cat course.Category) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.categories[cat.ID]; !ok {
		return course.ErrCategoryNotFound
	}
	repo.db.categories[cat.ID] = cat
	return nil
}

func (repo *CourseRepository) DeleteCategoryByID(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.categories, id)
	return nil
}

// group.Repository

type GroupRepository struct{ db *DB }

var _ group.Repository = (*GroupRepository)(nil)

func NewGroupRepository(db *DB) *GroupRepository { return &GroupRepository{db: db} }

func (repo *GroupRepository) CreateGroup(_ context.Context, g group.Group) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	g.ID = uuid.New().String()
	repo.db.groups[g.ID] = g
	return g, nil
}

func (repo *GroupRepository) GetGroupByID(_ context.Context, id string) (group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if g, ok := repo.db.groups[id]; ok {
		return g, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *GroupRepository) QueryGroupsByCategory(_ context.Context, categoryID string) ([]group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var groups []group.Group
	for _, g := range repo.db.groups {
		if g.CategoryID == categoryID {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func (repo *GroupRepository) UpdateGroup(_ context.Context, g group.Group) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.groups[g.ID]; !ok {
		return group.ErrNotFound
	}
	repo.db.groups[g.ID] = g
	return nil
}

func (repo *GroupRepository) DeleteGroupByID(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.groups, id)
	return nil
}

// activity.Repository

type ActivityRepository struct{ db *DB }

var _ activity.Repository = (*ActivityRepository)(nil)

func NewActivityRepository(db *DB) *ActivityRepository { return &ActivityRepository{db: db} }

func (repo *ActivityRepository) QueryActivitiesByCourse(_ context.Context, courseID string) ([]activity.Activity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var acts []activity.Activity
	for _, act := range repo.db.activities {
		if act.CourseID == courseID {
			acts = append(acts, act)
		}
	}
	return acts, nil
}

func (repo *ActivityRepository) GetActivityByID(_ context.Context, id string) (activity.Activity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if act, ok := repo.db.activities[id]; ok {
		return act, nil
	}
	return activity.Activity{}, activity.ErrNotFound
}

func (repo *ActivityRepository) CreateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	act.ID = uuid.New().String()
	if act.Scores == nil {
		act.Scores = activity.ScoreMap{}
	}
	repo.db.activities[act.ID] = act
	return act, nil
}

func (repo *ActivityRepository) UpdateActivity(_ context.Context, id, name, description string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	act, ok := repo.db.activities[id]
	if !ok {
		return activity.ErrNotFound
	}
	act.Name = name
	act.Description = description
	repo.db.activities[id] = act
	return nil
}

func (repo *ActivityRepository) DeleteActivityByID(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.activities, id)
	return nil
}

func (repo *ActivityRepository) ActivateAssessment(_ context.Context, id, label string, isPublic bool, deadline time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	act, ok := repo.db.activities[id]
	if !ok {
		return activity.ErrNotFound
	}
	act.IsAssessment = true
	act.AssessmentLabel = label
	act.IsPublic = isPublic
	act.Deadline = &deadline
	repo.db.activities[id] = act
	return nil
}

func (repo *ActivityRepository) ReplaceScores(_ context.Context, id string, scores activity.ScoreMap) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	act, ok := repo.db.activities[id]
	if !ok {
		return activity.ErrNotFound
	}
	act.Scores = scores
	repo.db.activities[id] = act
	return nil
}
