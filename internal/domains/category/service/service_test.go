package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karwan-auliya/internal/domains/category/model"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/pkg/cache"
	"karwan-auliya/pkg/query"
)

type fakeRepo struct {
	mu         sync.Mutex
	categories []model.Category
	calls      map[string]int
}

func newFakeRepo(cs ...model.Category) *fakeRepo {
	return &fakeRepo{categories: cs, calls: map[string]int{}}
}

func (f *fakeRepo) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeRepo) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRepo) List(context.Context) ([]model.Category, error) {
	f.hit("List")
	return append([]model.Category(nil), f.categories...), nil
}

func (f *fakeRepo) ListParents(context.Context) ([]model.Category, error) {
	f.hit("ListParents")
	var out []model.Category
	for _, c := range f.categories {
		if c.ParentID == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByParent(_ context.Context, parentID uuid.UUID) ([]model.Category, error) {
	f.hit("ListByParent")
	out := []model.Category{}
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetBySlug(_ context.Context, slug string) (*model.Category, error) {
	f.hit("GetBySlug")
	for _, c := range f.categories {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, model.ErrCategoryNotFound
}

func (f *fakeRepo) Create(_ context.Context, c *model.Category) error {
	f.hit("Create")
	for _, existing := range f.categories {
		if existing.Slug == c.Slug {
			return model.ErrDuplicateSlug
		}
	}
	f.categories = append(f.categories, *c)
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) (*model.Category, error) {
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return &c, nil
		}
	}
	return nil, model.ErrCategoryNotFound
}

func (f *fakeRepo) RecountBooks(context.Context) (int64, error) {
	f.hit("RecountBooks")
	return 1, nil
}

func fixtures() (model.Category, model.Category) {
	parent := model.Category{ID: uuid.New(), Name: "Fiqh", Slug: "fiqh"}
	child := model.Category{ID: uuid.New(), Name: "Ibadah", Slug: "ibadah", ParentID: &parent.ID}
	return parent, child
}

func newService(repo *fakeRepo) *Service {
	return NewService(repo, query.NewClient(cache.NewMemoryCache(), time.Minute), nil)
}

func adminCtx() context.Context {
	return auth.WithSession(context.Background(), &auth.Session{UserID: uuid.New(), Role: auth.RoleAdmin})
}

func TestListIsCached(t *testing.T) {
	parent, child := fixtures()
	repo := newFakeRepo(parent, child)
	svc := newService(repo)

	first := svc.List(context.Background())
	require.NoError(t, first.Err)
	assert.Equal(t, query.StatusSuccess, first.Status)
	assert.Len(t, first.Data, 2)

	second := svc.List(context.Background())
	require.NoError(t, second.Err)
	assert.Len(t, second.Data, 2)
	assert.Equal(t, 1, repo.count("List"))
}

func TestListSubcategories(t *testing.T) {
	parent, child := fixtures()
	svc := newService(newFakeRepo(parent, child))

	res := svc.ListSubcategories(context.Background(), "fiqh")
	require.NoError(t, res.Err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, child.ID, res.Data[0].ID)

	res = svc.ListSubcategories(context.Background(), "unknown")
	require.NoError(t, res.Err)
	assert.Empty(t, res.Data)

	res = svc.ListSubcategories(context.Background(), "  ")
	assert.Equal(t, query.StatusIdle, res.Status)
	assert.Nil(t, res.Data)
}

func TestGetBySlug(t *testing.T) {
	parent, _ := fixtures()
	repo := newFakeRepo(parent)
	svc := newService(repo)

	res := svc.GetBySlug(context.Background(), "fiqh")
	require.NoError(t, res.Err)
	require.NotNil(t, res.Data)
	assert.Equal(t, parent.ID, res.Data.ID)

	missing := svc.GetBySlug(context.Background(), "nope")
	require.NoError(t, missing.Err)
	assert.Nil(t, missing.Data)

	idle := svc.GetBySlug(context.Background(), "")
	assert.Equal(t, query.StatusIdle, idle.Status)
	assert.Equal(t, 2, repo.count("GetBySlug"))
}

func TestCreate(t *testing.T) {
	parent, child := fixtures()
	repo := newFakeRepo(parent, child)
	svc := newService(repo)

	_, err := svc.Create(context.Background(), model.CreateCategoryRequest{Name: "Tafsir"})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	assert.Zero(t, repo.count("Create"))

	// warm the cache, then check the mutation drops it
	svc.List(context.Background())

	created, err := svc.Create(adminCtx(), model.CreateCategoryRequest{Name: "Tafsir Al-Qur'an", ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Equal(t, "tafsir-al-quran", created.Slug)

	res := svc.List(context.Background())
	assert.Len(t, res.Data, 3)
	assert.Equal(t, 2, repo.count("List"))

	_, err = svc.Create(adminCtx(), model.CreateCategoryRequest{Name: "Fiqh"})
	assert.ErrorIs(t, err, model.ErrDuplicateSlug)

	_, err = svc.Create(adminCtx(), model.CreateCategoryRequest{Name: "Deep", ParentID: &child.ID})
	assert.ErrorIs(t, err, model.ErrInvalidParent)

	missing := uuid.New()
	_, err = svc.Create(adminCtx(), model.CreateCategoryRequest{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, model.ErrInvalidParent)

	_, err = svc.Create(adminCtx(), model.CreateCategoryRequest{Name: "x"})
	assert.Error(t, err)
}

func TestCreateRequiresAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := auth.WithSession(context.Background(), &auth.Session{UserID: uuid.New(), Role: "user"})

	_, err := svc.Create(ctx, model.CreateCategoryRequest{Name: "Hadith"})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), auth.ErrForbidden)
}

func TestDelete(t *testing.T) {
	parent, _ := fixtures()
	svc := newService(newFakeRepo(parent))

	require.NoError(t, svc.Delete(adminCtx(), parent.ID))
	assert.ErrorIs(t, svc.Delete(adminCtx(), parent.ID), model.ErrCategoryNotFound)
}

func TestRecountBooks(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	require.NoError(t, svc.RecountBooks(context.Background()))
	assert.Equal(t, 1, repo.count("RecountBooks"))
}
