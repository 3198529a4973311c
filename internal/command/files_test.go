package command_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/fusendo/internal/apperr"
	"github.com/starford/fusendo/internal/command"
	"github.com/starford/fusendo/internal/models"
	"github.com/starford/fusendo/internal/testutil"
)

func TestAppDataCommands(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, testutil.NewScriptedDriver())

	ok, err := svc.Exists(ctx, "todos.json")
	require.NoError(t, err)
	assert.False(t, ok)

	meta, err := svc.WriteTextFile(ctx, "todos.json", `[{"id":1}]`)
	require.NoError(t, err)
	assert.Equal(t, "todos.json", meta.Path)
	assert.NotEmpty(t, meta.Checksum)

	ok, err = svc.Exists(ctx, "todos.json")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.ReadTextFile(ctx, "todos.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, got)

	items, err := svc.ListTextFiles(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAppDataErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, testutil.NewScriptedDriver())

	_, err := svc.ReadTextFile(ctx, "missing.json")
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))

	_, err = svc.WriteTextFile(ctx, "../escape.json", "x")
	assert.Equal(t, apperr.KindInvalidPath, kindOf(t, err))

	_, err = svc.ListTextFiles(ctx, "/etc")
	assert.Equal(t, apperr.KindInvalidPath, kindOf(t, err))
}

func TestBackupTextFile(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 3, 4, 5, 678_000_000, time.UTC)
	svc := newService(t, testutil.NewScriptedDriver(), command.WithClock(func() time.Time { return now }))

	name, err := svc.BackupTextFile(ctx, "fu-sendo-it-todos.json", "[]")
	require.NoError(t, err)
	assert.Equal(t, "fu-sendo-it-todos-backup-2025-01-02T03-04-05-678Z.json", name)

	got, err := svc.ReadTextFile(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestInvokeDispatch(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, testutil.NewScriptedDriver())

	got, err := svc.Invoke(ctx, command.Greet, json.RawMessage(`{"name":"Ada"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada! You've been greeted from Go!", got)

	got, err = svc.Invoke(ctx, command.Greet, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, ! You've been greeted from Go!", got)

	_, err = svc.Invoke(ctx, "nope", nil)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))

	_, err = svc.Invoke(ctx, command.WriteFileToPath, json.RawMessage(`{"content":"x"}`))
	assert.Equal(t, apperr.KindInvalidArgument, kindOf(t, err))

	_, err = svc.Invoke(ctx, command.CancelDialog, json.RawMessage(`{"id":"not-a-uuid"}`))
	assert.Equal(t, apperr.KindInvalidArgument, kindOf(t, err))

	_, err = svc.Invoke(ctx, command.RecentLocations, json.RawMessage(`{"limit":-1}`))
	assert.Equal(t, apperr.KindInvalidArgument, kindOf(t, err))

	_, err = svc.Invoke(ctx, command.Greet, json.RawMessage(`[1,2]`))
	assert.Equal(t, apperr.KindInvalidArgument, kindOf(t, err))

	got, err = svc.Invoke(ctx, command.RecentLocations, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, []models.Location{}, got)
}

func TestNamesSorted(t *testing.T) {
	svc := newService(t, testutil.NewScriptedDriver())
	names := svc.Names()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, command.SaveMarkdownFile)
	assert.Contains(t, names, command.SelectDirectory)
	assert.Contains(t, names, command.WriteFileToPath)
	assert.Contains(t, names, command.Greet)
}
