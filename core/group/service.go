package group

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/openlab-uninorte/aula/core/course"
)

var (
	// errors
	ErrNotFound      = errors.New("group not found")
	ErrAlreadyJoined = errors.New("student already joined a group in this category")
)

type (
	Repository interface {
		CreateGroup(ctx context.Context, g Group) (Group, error)
		GetGroupByID(ctx context.Context, id string) (Group, error)
		QueryGroupsByCategory(ctx context.Context, categoryID string) ([]Group, error)
		UpdateGroup(ctx context.Context, g Group) error
		DeleteGroupByID(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	g := Group{
		Name:       ng.Name,
		CategoryID: ng.CategoryID,
		Members:    ng.Members,
	}
	if g.Members == nil {
		g.Members = []string{}
	}
	return svc.repo.CreateGroup(ctx, g)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *Service) QueryByCategory(ctx context.Context, categoryID string) ([]Group, error) {
	return svc.repo.QueryGroupsByCategory(ctx, categoryID)
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGroup) (Group, error) {
	g, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return Group{}, err
	}
	g.Name = ug.Name
	g.Members = ug.Members
	if err = svc.repo.UpdateGroup(ctx, g); err != nil {
		return Group{}, err
	}
	return g, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteGroupByID(ctx, id)
}

// Join adds a student to a group. A student may belong to at most one group
// per category.
func (svc *Service) Join(ctx context.Context, id, name, email string) (Group, error) {
	g, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return Group{}, err
	}

	siblings, err := svc.repo.QueryGroupsByCategory(ctx, g.CategoryID)
	if err != nil {
		return Group{}, err
	}
	for _, sib := range siblings {
		if sib.HasMember(name, email) {
			return Group{}, ErrAlreadyJoined
		}
	}

	g.Members = append(g.Members, name)
	if err = svc.repo.UpdateGroup(ctx, g); err != nil {
		return Group{}, err
	}
	return g, nil
}

// GenerateForCategory randomly partitions the course roster into groups of
// cat.GroupSize members. The last group holds the remainder.
func (svc *Service) GenerateForCategory(ctx context.Context, cat course.Category, roster []string) ([]Group, error) {
	if !cat.IsRandomSelection || cat.GroupSize < 2 {
		return nil, errors.New("category does not use random group selection")
	}

	shuffled := make([]string, len(roster))
	copy(shuffled, roster)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	groups := make([]Group, 0, len(shuffled)/cat.GroupSize+1)
	for i := 0; i < len(shuffled); i += cat.GroupSize {
		end := i + cat.GroupSize
		if end > len(shuffled) {
			end = len(shuffled)
		}
		g, err := svc.repo.CreateGroup(ctx, Group{
			Name:       fmt.Sprintf("%s - Group %d", cat.Name, len(groups)+1),
			CategoryID: cat.ID,
			Members:    shuffled[i:end],
		})
		if err != nil {
			return groups, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}
