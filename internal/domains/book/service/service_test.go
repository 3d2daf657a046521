package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karwan-auliya/internal/domains/book/model"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/internal/transfer"
	"karwan-auliya/pkg/cache"
	"karwan-auliya/pkg/query"
)

type fakeRepo struct {
	mu      sync.Mutex
	books   map[uuid.UUID]*model.Book
	calls   map[string]int
	filters []model.Filter
}

func newFakeRepo(books ...model.Book) *fakeRepo {
	r := &fakeRepo{books: map[uuid.UUID]*model.Book{}, calls: map[string]int{}}
	for i := range books {
		b := books[i]
		r.books[b.ID] = &b
	}
	return r
}

func (f *fakeRepo) hit(name string) {
	f.calls[name]++
}

func (f *fakeRepo) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRepo) List(_ context.Context, filter model.Filter) ([]model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("List")
	f.filters = append(f.filters, filter)
	var out []model.Book
	for _, b := range f.books {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("GetByID")
	b, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) QuickSearch(_ context.Context, term string, limit int) ([]model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("QuickSearch")
	return []model.Book{}, nil
}

func (f *fakeRepo) Create(_ context.Context, b *model.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("Create")
	cp := *b
	f.books[b.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("Update")
	b, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Status != nil {
		b.Status = *req.Status
	}
	if req.CoverURL != nil {
		b.CoverURL = req.CoverURL
	}
	if req.FileURL != nil {
		b.FileURL = req.FileURL
	}
	if req.Pages != nil {
		b.Pages = req.Pages
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	delete(f.books, id)
	return b, nil
}

func (f *fakeRepo) IncrementDownloads(context.Context, uuid.UUID) error { return nil }

type fakeNotifier struct {
	published []uuid.UUID
}

func (n *fakeNotifier) NotifyBookPublished(_ context.Context, id uuid.UUID, _, _ string) error {
	n.published = append(n.published, id)
	return nil
}

type fakeAssets struct {
	deleted map[transfer.Area][]string
}

func (a *fakeAssets) Delete(_ context.Context, area transfer.Area, path string) bool {
	if a.deleted == nil {
		a.deleted = map[transfer.Area][]string{}
	}
	a.deleted[area] = append(a.deleted[area], path)
	return true
}

func (a *fakeAssets) CoverPath(publicURL string) string {
	return "covers/x.jpg"
}

func adminCtx() context.Context {
	return auth.WithSession(context.Background(), &auth.Session{UserID: uuid.New(), Role: auth.RoleAdmin})
}

func userCtx() context.Context {
	return auth.WithSession(context.Background(), &auth.Session{UserID: uuid.New(), Role: "user"})
}

func book(title, status string) model.Book {
	return model.Book{ID: uuid.New(), Title: title, Author: "Al-Ghazali", Status: status}
}

func setup(books ...model.Book) (*Service, *fakeRepo, *fakeNotifier, *fakeAssets) {
	repo := newFakeRepo(books...)
	notifier := &fakeNotifier{}
	assets := &fakeAssets{}
	svc := NewService(repo, query.NewClient(cache.NewMemoryCache(), time.Minute), nil, notifier, assets)
	return svc, repo, notifier, assets
}

func TestListHidesDraftsFromReaders(t *testing.T) {
	svc, repo, _, _ := setup(book("Ihya", model.StatusPublished), book("Draft", model.StatusDraft))

	res := svc.List(context.Background(), model.Filter{Status: model.StatusDraft})
	require.NoError(t, res.Err)
	assert.Len(t, res.Data, 1)
	assert.Equal(t, model.StatusPublished, repo.filters[0].Status)

	res = svc.List(adminCtx(), model.Filter{})
	require.NoError(t, res.Err)
	assert.Len(t, res.Data, 2)
}

func TestListRejectsBadFilter(t *testing.T) {
	svc, repo, _, _ := setup()

	res := svc.List(context.Background(), model.Filter{SortBy: "price"})
	assert.Equal(t, query.StatusError, res.Status)
	assert.Error(t, res.Err)
	assert.Zero(t, repo.count("List"))
}

func TestListSharesCacheForEqualFilters(t *testing.T) {
	svc, repo, _, _ := setup(book("Ihya", model.StatusPublished))

	svc.List(context.Background(), model.Filter{})
	svc.List(context.Background(), model.Filter{SortBy: model.DefaultSortBy, SortOrder: model.DefaultSortOrder})
	assert.Equal(t, 1, repo.count("List"))
}

func TestGetHidesDrafts(t *testing.T) {
	draft := book("Draft", model.StatusDraft)
	svc, _, _, _ := setup(draft)

	res := svc.Get(context.Background(), draft.ID.String())
	assert.ErrorIs(t, res.Err, model.ErrBookNotFound)

	res = svc.Get(adminCtx(), draft.ID.String())
	require.NoError(t, res.Err)
	assert.Equal(t, draft.ID, res.Data.ID)

	res = svc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, res.Err, model.ErrBookNotFound)

	res = svc.Get(context.Background(), "")
	assert.Equal(t, query.StatusIdle, res.Status)
}

func TestQuickSearchDisabledForBlankTerm(t *testing.T) {
	svc, repo, _, _ := setup()

	res := svc.QuickSearch(context.Background(), "   ")
	assert.Equal(t, query.StatusIdle, res.Status)
	assert.Zero(t, repo.count("QuickSearch"))

	res = svc.QuickSearch(context.Background(), "ihya")
	require.NoError(t, res.Err)
	assert.Equal(t, 1, repo.count("QuickSearch"))
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc, repo, _, _ := setup()

	_, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Ihya", Author: "Al-Ghazali"})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	_, err = svc.Create(userCtx(), model.CreateBookRequest{Title: "Ihya", Author: "Al-Ghazali"})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.Zero(t, repo.count("Create"))
}

func TestCreateDefaultsAndAnnounce(t *testing.T) {
	svc, _, notifier, _ := setup()

	draft, err := svc.Create(adminCtx(), model.CreateBookRequest{Title: " Ihya ", Author: "Al-Ghazali"})
	require.NoError(t, err)
	assert.Equal(t, "Ihya", draft.Title)
	assert.Equal(t, model.StatusDraft, draft.Status)
	assert.Equal(t, "English", draft.Language)
	assert.Empty(t, notifier.published)

	published, err := svc.Create(adminCtx(), model.CreateBookRequest{Title: "Bidayah", Author: "Al-Ghazali", Status: model.StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{published.ID}, notifier.published)
}

func TestUpdateAnnouncesOnPublish(t *testing.T) {
	draft := book("Draft", model.StatusDraft)
	svc, _, notifier, _ := setup(draft)

	_, err := svc.Update(adminCtx(), draft.ID, model.UpdateBookRequest{})
	assert.ErrorIs(t, err, model.ErrNothingToUpdate)

	title := "Renamed"
	_, err = svc.Update(adminCtx(), draft.ID, model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)
	assert.Empty(t, notifier.published)

	status := model.StatusPublished
	_, err = svc.Update(adminCtx(), draft.ID, model.UpdateBookRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{draft.ID}, notifier.published)

	// already published: no second announcement
	_, err = svc.Update(adminCtx(), draft.ID, model.UpdateBookRequest{Status: &status})
	require.NoError(t, err)
	assert.Len(t, notifier.published, 1)

	_, err = svc.Update(adminCtx(), uuid.New(), model.UpdateBookRequest{Title: &title})
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestUpdateInvalidatesReads(t *testing.T) {
	b := book("Ihya", model.StatusPublished)
	svc, repo, _, _ := setup(b)

	first := svc.Get(context.Background(), b.ID.String())
	require.NoError(t, first.Err)

	title := "Ihya Ulum al-Din"
	_, err := svc.Update(adminCtx(), b.ID, model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)

	second := svc.Get(context.Background(), b.ID.String())
	require.NoError(t, second.Err)
	assert.Equal(t, title, second.Data.Title)
	// one for the first read, one inside Update, one after invalidation
	assert.Equal(t, 3, repo.count("GetByID"))
}

func TestDeleteRemovesAssets(t *testing.T) {
	cover := "http://localhost:9000/book-covers/covers/x.jpg"
	file := "books/abc.pdf"
	b := book("Ihya", model.StatusPublished)
	b.CoverURL = &cover
	b.FileURL = &file
	svc, _, _, assets := setup(b)

	require.NoError(t, svc.Delete(adminCtx(), b.ID))
	assert.Equal(t, []string{"covers/x.jpg"}, assets.deleted[transfer.AreaCovers])
	assert.Equal(t, []string{file}, assets.deleted[transfer.AreaBooks])

	assert.ErrorIs(t, svc.Delete(adminCtx(), b.ID), model.ErrBookNotFound)
}

func TestAttachFileRecordsPages(t *testing.T) {
	b := book("Ihya", model.StatusDraft)
	svc, _, _, _ := setup(b)

	updated, err := svc.AttachFile(adminCtx(), b.ID, "books/"+b.ID.String()+".pdf", 412)
	require.NoError(t, err)
	require.NotNil(t, updated.Pages)
	assert.Equal(t, 412, *updated.Pages)
	assert.True(t, updated.HasFile())

	updated, err = svc.AttachCover(adminCtx(), b.ID, "http://cdn/covers/a.png")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/covers/a.png", *updated.CoverURL)
}
