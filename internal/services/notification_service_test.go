package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munitask/internal/apperrors"
	"munitask/internal/models"
)

func seedNotification(repo *fakeNotificationRepo, userID, taskID int64, typ models.NotificationType) *models.Notification {
	n := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   "t",
		Message: "m",
		TaskID:  &taskID,
	}
	if _, err := repo.CreateDedup(context.Background(), n); err != nil {
		panic(err)
	}
	return n
}

func TestNotificationListIsScopedToUser(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)

	seedNotification(repo, 1, 10, models.NotificationTaskAssigned)
	seedNotification(repo, 1, 11, models.NotificationTaskDueToday)
	seedNotification(repo, 2, 10, models.NotificationTaskAssigned)

	mine, err := svc.ListForUser(context.Background(), 1, models.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, n := range mine {
		assert.Equal(t, int64(1), n.UserID)
	}
}

func TestNotificationListUnreadOnly(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)

	a := seedNotification(repo, 1, 10, models.NotificationTaskAssigned)
	seedNotification(repo, 1, 11, models.NotificationTaskDueToday)
	require.NoError(t, repo.MarkRead(context.Background(), a.ID, time.Now()))

	unread, err := svc.ListForUser(context.Background(), 1, models.NotificationQuery{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.NotEqual(t, a.ID, unread[0].ID)
}

func TestNotificationMarkAsReadIsIdempotent(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)
	n := seedNotification(repo, 1, 10, models.NotificationTaskOverdue)

	first, err := svc.MarkAsRead(context.Background(), n.ID, 1)
	require.NoError(t, err)
	assert.True(t, first.Read)
	require.NotNil(t, first.ReadAt)
	firstReadAt := *first.ReadAt

	// el segundo acuse no pisa read_at
	second, err := svc.MarkAsRead(context.Background(), n.ID, 1)
	require.NoError(t, err)
	assert.True(t, second.Read)
	require.NotNil(t, second.ReadAt)
	assert.Equal(t, firstReadAt, *second.ReadAt)
}

func TestNotificationOwnershipChecks(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)
	n := seedNotification(repo, 1, 10, models.NotificationTaskAssigned)

	// otro usuario no puede leer ni borrar avisos ajenos
	_, err := svc.MarkAsRead(context.Background(), n.ID, 2)
	assert.True(t, apperrors.IsForbidden(err))

	err = svc.Delete(context.Background(), n.ID, 2)
	assert.True(t, apperrors.IsForbidden(err))

	// aviso inexistente
	_, err = svc.MarkAsRead(context.Background(), 9999, 1)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestNotificationMarkAllAsRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)

	seedNotification(repo, 1, 10, models.NotificationTaskAssigned)
	seedNotification(repo, 1, 11, models.NotificationTaskDueToday)
	other := seedNotification(repo, 2, 10, models.NotificationTaskAssigned)

	updated, err := svc.MarkAllAsRead(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := svc.UnreadCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	// los avisos de otros usuarios no se tocan
	foreign, err := repo.FindByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.False(t, foreign.Read)

	// repetirlo con todo leído no actualiza nada
	updated, err = svc.MarkAllAsRead(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestNotificationDelete(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)
	n := seedNotification(repo, 1, 10, models.NotificationTaskAssigned)

	require.NoError(t, svc.Delete(context.Background(), n.ID, 1))

	gone, err := repo.FindByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestNotificationUnreadCount(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)

	seedNotification(repo, 1, 10, models.NotificationTaskAssigned)
	b := seedNotification(repo, 1, 11, models.NotificationTaskDueToday)
	require.NoError(t, repo.MarkRead(context.Background(), b.ID, time.Now()))

	count, err := svc.UnreadCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
