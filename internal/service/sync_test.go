package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocerny17-lgtm/kavarna/internal/model"
	"github.com/ocerny17-lgtm/kavarna/internal/repository"
)

// fakeChannel is an in-memory stand-in for the remote blob store.
type fakeChannel struct {
	mu      sync.Mutex
	blob    []byte
	pullErr error
	pushErr error
	pushes  int
}

func (f *fakeChannel) Pull(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	if f.blob == nil {
		return nil, repository.ErrChannelEmpty
	}
	return f.blob, nil
}

func (f *fakeChannel) Push(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.blob = payload
	f.pushes++
	return nil
}

func (f *fakeChannel) snapshot() ([]byte, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blob, f.pushes
}

func TestRemotePusher_PushesSnapshot(t *testing.T) {
	ch := &fakeChannel{}
	pusher := NewRemotePusher(ch, 8, nil)
	stop := pusher.Start(1)
	defer stop(context.Background())

	pusher.EnqueuePush([]model.Order{
		{ID: 1, CustomerName: "Marie", CoffeeType: "latte", Status: model.StatusNew, Timestamp: 10, UpdatedAt: 10},
	})

	require.Eventually(t, func() bool {
		_, pushes := ch.snapshot()
		return pushes == 1
	}, 2*time.Second, 10*time.Millisecond)

	blob, _ := ch.snapshot()
	var pushed []model.Order
	require.NoError(t, json.Unmarshal(blob, &pushed))
	require.Len(t, pushed, 1)
	assert.Equal(t, int64(1), pushed[0].ID)
}

func TestRemotePusher_PushFailureIsDropped(t *testing.T) {
	ch := &fakeChannel{pushErr: errors.New("network down")}
	pusher := NewRemotePusher(ch, 8, nil)
	stop := pusher.Start(1)
	defer stop(context.Background())

	// must not panic, block, or surface anywhere
	pusher.EnqueuePush([]model.Order{{ID: 1, Timestamp: 10, UpdatedAt: 10}})
	time.Sleep(50 * time.Millisecond)
	_, pushes := ch.snapshot()
	assert.Equal(t, 0, pushes)
}

func TestRemotePuller_MergesRemoteState(t *testing.T) {
	repo := &fakeOrderRepo{loaded: []model.Order{
		{ID: 1, Status: model.StatusNew, Timestamp: 100, UpdatedAt: 100},
	}}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()
	require.NoError(t, svc.Restore(ctx))

	remote := []model.Order{
		{ID: 1, Status: model.StatusClaimed, Barista: "Ondrej", Timestamp: 100, UpdatedAt: 400},
		{ID: 2, Status: model.StatusNew, Timestamp: 200, UpdatedAt: 200},
	}
	blob, err := json.Marshal(remote)
	require.NoError(t, err)

	puller := NewRemotePuller(svc, &fakeChannel{blob: blob}, time.Second, nil)
	require.NoError(t, puller.PullOnce(ctx))

	list := svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, model.StatusClaimed, list[0].Status)
	assert.Equal(t, "Ondrej", list[0].Barista)
}

func TestRemotePuller_FailuresAreNoOps(t *testing.T) {
	repo := &fakeOrderRepo{loaded: []model.Order{
		{ID: 1, Status: model.StatusNew, Timestamp: 100, UpdatedAt: 100},
	}}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()
	require.NoError(t, svc.Restore(ctx))
	before := svc.Snapshot(ctx)

	// empty channel: quietly nothing
	puller := NewRemotePuller(svc, &fakeChannel{}, time.Second, nil)
	require.NoError(t, puller.PullOnce(ctx))
	assert.Equal(t, before, svc.Snapshot(ctx))

	// network failure: logged, canonical collection untouched
	puller = NewRemotePuller(svc, &fakeChannel{pullErr: errors.New("timeout")}, time.Second, nil)
	assert.Error(t, puller.PullOnce(ctx))
	assert.Equal(t, before, svc.Snapshot(ctx))

	// non-collection payload: same story
	puller = NewRemotePuller(svc, &fakeChannel{blob: []byte(`{"oops": true}`)}, time.Second, nil)
	assert.Error(t, puller.PullOnce(ctx))
	assert.Equal(t, before, svc.Snapshot(ctx))
}

func TestPullPushConvergence(t *testing.T) {
	// two independent clients sharing one channel converge after pulls
	ch := &fakeChannel{}
	ctx := context.Background()

	repoA := &fakeOrderRepo{}
	svcA, _ := newTestService(repoA, nil)
	pusherA := NewRemotePusher(ch, 8, nil)
	stopA := pusherA.Start(1)
	defer stopA(ctx)
	svcA.pusher = pusherA

	repoB := &fakeOrderRepo{}
	svcB, _ := newTestService(repoB, nil)

	order, err := svcA.Create(ctx, CreateOrderInput{CustomerName: "Jakub", CoffeeType: "flat white"}, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, pushes := ch.snapshot()
		return pushes == 1
	}, 2*time.Second, 10*time.Millisecond)

	pullerB := NewRemotePuller(svcB, ch, time.Second, nil)
	require.NoError(t, pullerB.PullOnce(ctx))

	listB := svcB.List(ctx)
	require.Len(t, listB, 1)
	assert.Equal(t, order.ID, listB[0].ID)
	assert.Equal(t, "Jakub", listB[0].CustomerName)
}
