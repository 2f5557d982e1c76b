// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shiftlog-tui/internal/model"
)

func openTestStore(t *testing.T) *DraftStore {
	t.Helper()
	s, err := OpenDraftStore(filepath.Join(t.TempDir(), DraftsFile))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDraftStore_SaveLoad(t *testing.T) {
	s := openTestStore(t)
	s.now = func() time.Time { return time.Unix(1740816000, 0) }
	ctx := context.Background()

	_, err := s.LoadDraft(ctx, "marta")
	require.ErrorIs(t, err, ErrDraftNotFound)

	d := model.NewDraft()
	d.Area = "Norte"
	d.Team[0].Name = "Juan Pérez"
	d.Progress = "Losa"
	require.NoError(t, s.SaveDraft(ctx, "marta", d))

	got, err := s.LoadDraft(ctx, "marta")
	require.NoError(t, err)
	assert.Equal(t, d, got.Draft)
	assert.Equal(t, int64(1740816000), got.UpdatedAt.Unix())

	d.Area = "Sur"
	require.NoError(t, s.SaveDraft(ctx, "marta", d))
	got, err = s.LoadDraft(ctx, "marta")
	require.NoError(t, err)
	assert.Equal(t, "Sur", got.Draft.Area)
}

func TestDraftStore_PerUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDraft(ctx, "marta", model.Draft{Area: "A"}))
	require.NoError(t, s.SaveDraft(ctx, "pedro", model.Draft{Area: "B"}))

	got, err := s.LoadDraft(ctx, "pedro")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Draft.Area)
	assert.Len(t, got.Draft.Team, 1, "a draft always has a roster row")

	require.NoError(t, s.DeleteDraft(ctx, "marta"))
	require.NoError(t, s.DeleteDraft(ctx, "marta"))
	_, err = s.LoadDraft(ctx, "marta")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDraftStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DraftsFile)
	ctx := context.Background()

	s, err := OpenDraftStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveDraft(ctx, "marta", model.Draft{Area: "Norte"}))
	require.NoError(t, s.Close())

	_, err = s.LoadDraft(ctx, "marta")
	assert.ErrorIs(t, err, ErrClosed)

	s, err = OpenDraftStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.LoadDraft(ctx, "marta")
	require.NoError(t, err)
	assert.Equal(t, "Norte", got.Draft.Area)
}

func TestDraftStore_RejectsEmptyUser(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.SaveDraft(context.Background(), "", model.NewDraft()))
}
