package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karwan-auliya/internal/domains/profile/model"
	"karwan-auliya/internal/shared/auth"
	"karwan-auliya/pkg/cache"
	"karwan-auliya/pkg/query"
)

type fakeRepo struct {
	profiles map[uuid.UUID]*model.Profile
	gets     int
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	f.gets++
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Upsert(_ context.Context, id uuid.UUID, req model.UpdateRequest) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		p = &model.Profile{ID: id, CreatedAt: time.Now()}
		f.profiles[id] = p
	}
	if req.DisplayName != nil {
		p.DisplayName = req.DisplayName
	}
	if req.AvatarURL != nil {
		p.AvatarURL = req.AvatarURL
	}
	if req.Bio != nil {
		p.Bio = req.Bio
	}
	cp := *p
	return &cp, nil
}

func str(s string) *string { return &s }

func TestProfile(t *testing.T) {
	repo := &fakeRepo{profiles: map[uuid.UUID]*model.Profile{}}
	svc := NewService(repo, query.NewClient(cache.NewMemoryCache(), time.Minute), nil)
	ctx := auth.WithSession(context.Background(), &auth.Session{UserID: uuid.New()})

	assert.ErrorIs(t, svc.Me(context.Background()).Err, auth.ErrNotAuthenticated)

	me := svc.Me(ctx)
	require.NoError(t, me.Err)
	assert.Nil(t, me.Data)

	_, err := svc.UpdateMe(ctx, model.UpdateRequest{})
	assert.ErrorIs(t, err, model.ErrNothingToUpdate)

	_, err = svc.UpdateMe(ctx, model.UpdateRequest{AvatarURL: str("not a url")})
	assert.Error(t, err)

	p, err := svc.UpdateMe(ctx, model.UpdateRequest{DisplayName: str("  Fatimah "), AvatarURL: str("https://cdn.example/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "Fatimah", *p.DisplayName)

	_, err = svc.UpdateMe(ctx, model.UpdateRequest{Bio: str("Santri")})
	require.NoError(t, err)

	me = svc.Me(ctx)
	require.NoError(t, me.Err)
	require.NotNil(t, me.Data)
	assert.Equal(t, "Fatimah", *me.Data.DisplayName)
	assert.Equal(t, "Santri", *me.Data.Bio)
	assert.Equal(t, 2, repo.gets)
}
