package orders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"storefront/internal/models"
	"storefront/internal/orders/mocks"
)

func storedOrder(status models.OrderStatus, mode models.DeliveryMode) models.Order {
	return models.Order{
		ID:     "order-1",
		Status: status,
		Customer: models.OrderCustomer{
			Name:         "Maria Souza",
			Phone:        "(85) 99999-0000",
			DeliveryMode: mode,
		},
	}
}

func newStatusService(t *testing.T) (*StatusService, *mocks.MockOrderStore, *mocks.MockNotifier) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockOrderStore(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	svc := NewStatusService(store, notifier, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, notifier
}

func TestTransitionConfirmNotifiesCustomer(t *testing.T) {
	svc, store, notifier := newStatusService(t)
	store.EXPECT().FindOrder(gomock.Any(), "order-1").Return(storedOrder(models.StatusPending, models.ModeDelivery), nil)
	store.EXPECT().UpdateOrderStatus(gomock.Any(), "order-1", models.StatusPending, models.StatusConfirmed, fixedNow).Return(true, nil)
	notifier.EXPECT().Notify(gomock.Any(), "(85) 99999-0000", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, text string) (string, error) {
			assert.True(t, strings.HasPrefix(text, "Olá, Maria!"))
			assert.Contains(t, text, "*confirmado*")
			return "link", nil
		})

	change, err := svc.Transition(context.Background(), "order-1", models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, change.Order.Status)
	assert.Equal(t, models.StatusPending, change.From)
	assert.Equal(t, "link", change.NotificationURL)
}

func TestTransitionFulfilledBranchesOnMode(t *testing.T) {
	tests := []struct {
		mode models.DeliveryMode
		want string
	}{
		{mode: models.ModeDelivery, want: "saiu para a entrega"},
		{mode: models.ModePickup, want: "pronto para retirada"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			svc, store, notifier := newStatusService(t)
			store.EXPECT().FindOrder(gomock.Any(), "order-1").Return(storedOrder(models.StatusConfirmed, tt.mode), nil)
			store.EXPECT().UpdateOrderStatus(gomock.Any(), "order-1", models.StatusConfirmed, models.StatusFulfilled, fixedNow).Return(true, nil)
			notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, _ string, text string) (string, error) {
					assert.Contains(t, text, tt.want)
					return "link", nil
				})

			change, err := svc.Transition(context.Background(), "order-1", models.StatusFulfilled)
			require.NoError(t, err)
			assert.Equal(t, models.StatusFulfilled, change.Order.Status)
		})
	}
}

func TestTransitionCancelDoesNotNotify(t *testing.T) {
	for _, from := range []models.OrderStatus{models.StatusPending, models.StatusConfirmed} {
		t.Run(string(from), func(t *testing.T) {
			svc, store, _ := newStatusService(t)
			store.EXPECT().FindOrder(gomock.Any(), "order-1").Return(storedOrder(from, models.ModePickup), nil)
			store.EXPECT().UpdateOrderStatus(gomock.Any(), "order-1", from, models.StatusCancelled, fixedNow).Return(true, nil)

			change, err := svc.Transition(context.Background(), "order-1", models.StatusCancelled)
			require.NoError(t, err)
			assert.Equal(t, models.StatusCancelled, change.Order.Status)
			assert.Empty(t, change.NotificationURL)
		})
	}
}

func TestTransitionFromTerminalStatusIsRejected(t *testing.T) {
	for _, from := range []models.OrderStatus{models.StatusFulfilled, models.StatusCancelled} {
		for _, to := range models.OrderStatuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				svc, store, _ := newStatusService(t)
				store.EXPECT().FindOrder(gomock.Any(), "order-1").Return(storedOrder(from, models.ModeDelivery), nil)

				_, err := svc.Transition(context.Background(), "order-1", to)
				assert.ErrorIs(t, err, ErrInvalidTransition)
			})
		}
	}
}

func TestTransitionSkippingConfirmIsRejected(t *testing.T) {
	svc, store, _ := newStatusService(t)
	store.EXPECT().FindOrder(gomock.Any(), "order-1").Return(storedOrder(models.StatusPending, models.ModeDelivery), nil)

	_, err := svc.Transition(context.Background(), "order-1", models.StatusFulfilled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionUpdateFailureDoesNotNotify(t *testing.T) {
	svc, store, _ := newStatusService(t)
	store.EXPECT().FindOrder(gomock.Any(), "order-1").Return(storedOrder(models.StatusPending, models.ModeDelivery), nil)
	store.EXPECT().UpdateOrderStatus(gomock.Any(), "order-1", models.StatusPending, models.StatusConfirmed, fixedNow).
		Return(false, errors.New("timeout"))

	_, err := svc.Transition(context.Background(), "order-1", models.StatusConfirmed)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionConflictWhenStatusMovedUnderneath(t *testing.T) {
	svc, store, _ := newStatusService(t)
	store.EXPECT().FindOrder(gomock.Any(), "order-1").Return(storedOrder(models.StatusPending, models.ModeDelivery), nil)
	store.EXPECT().UpdateOrderStatus(gomock.Any(), "order-1", models.StatusPending, models.StatusConfirmed, fixedNow).Return(false, nil)

	_, err := svc.Transition(context.Background(), "order-1", models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestTransitionMissingOrder(t *testing.T) {
	svc, store, _ := newStatusService(t)
	store.EXPECT().FindOrder(gomock.Any(), "nope").Return(models.Order{}, ErrOrderNotFound)

	_, err := svc.Transition(context.Background(), "nope", models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.StatusPending, models.StatusConfirmed))
	assert.True(t, CanTransition(models.StatusPending, models.StatusCancelled))
	assert.True(t, CanTransition(models.StatusConfirmed, models.StatusFulfilled))
	assert.True(t, CanTransition(models.StatusConfirmed, models.StatusCancelled))
	assert.False(t, CanTransition(models.StatusConfirmed, models.StatusPending))
	assert.False(t, CanTransition(models.StatusPending, models.StatusPending))
}
