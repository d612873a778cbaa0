package roble

import (
	"context"

	"github.com/google/uuid"

	"github.com/openlab-uninorte/aula/core/group"
)

const groupsTable = "groups"

// GroupRepository stores category group rosters in a Roble table.
type GroupRepository struct {
	client *Client
}

var _ group.Repository = (*GroupRepository)(nil)

func NewGroupRepository(client *Client) *GroupRepository {
	return &GroupRepository{client: client}
}

// decodeGroup maps a raw row onto a Group. Aliases, newest first:
// category|CategoryID|CatID, members|Students|StudentsNames.
func decodeGroup(rec Record) group.Group {
	g := group.Group{
		ID:         rec.String(idColumn, "id"),
		Name:       rec.String("name", "Name", "Nombre"),
		CategoryID: rec.String("category", "CategoryID", "CatID"),
		Members:    rec.StringSlice("members", "Students", "StudentsNames"),
	}
	if g.Members == nil {
		g.Members = []string{}
	}
	return g
}

func (repo *GroupRepository) CreateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	g.ID = uuid.New().String()
	err := repo.client.Insert(ctx, groupsTable, map[string]interface{}{
		idColumn:   g.ID,
		"name":     g.Name,
		"category": g.CategoryID,
		"members":  g.Members,
	})
	if err != nil {
		return group.Group{}, err
	}
	return g, nil
}

func (repo *GroupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	recs, err := repo.client.Read(ctx, groupsTable, map[string]string{idColumn: id})
	if err != nil {
		return group.Group{}, err
	}
	if len(recs) == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return decodeGroup(recs[0]), nil
}

func (repo *GroupRepository) QueryGroupsByCategory(ctx context.Context, categoryID string) ([]group.Group, error) {
	recs, err := repo.client.Read(ctx, groupsTable, map[string]string{"category": categoryID})
	if err != nil {
		return nil, err
	}
	groups := make([]group.Group, 0, len(recs))
	for _, rec := range recs {
		groups = append(groups, decodeGroup(rec))
	}
	return groups, nil
}

func (repo *GroupRepository) UpdateGroup(ctx context.Context, g group.Group) error {
	return repo.client.Update(ctx, groupsTable, g.ID, map[string]interface{}{
		"name":    g.Name,
		"members": g.Members,
	})
}

func (repo *GroupRepository) DeleteGroupByID(ctx context.Context, id string) error {
	return repo.client.Delete(ctx, groupsTable, id)
}
