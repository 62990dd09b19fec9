package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/mascotctl/api"
	"github.com/BaSui01/mascotctl/internal/hostthread"
	"github.com/BaSui01/mascotctl/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- fakes ---

type catalog map[string]bool

func (c catalog) HasVoice(id string) bool { return c[id] }

// recordingPlayer 记录播放顺序，并检测是否有重叠调用。
type recordingPlayer struct {
	mu      sync.Mutex
	busy    bool
	overlap bool
	played  []string
	err     error
}

func (p *recordingPlayer) PlayVoice(id string) error {
	p.mu.Lock()
	if p.busy {
		p.overlap = true
	}
	p.busy = true
	p.mu.Unlock()

	time.Sleep(time.Millisecond)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, id)
	return nil
}

type fakeStopper struct {
	mu    sync.Mutex
	calls int
	log   *[]string
}

func (s *fakeStopper) StopAsync() <-chan error {
	s.mu.Lock()
	s.calls++
	*s.log = append(*s.log, "stop")
	s.mu.Unlock()
	ch := make(chan error, 1)
	ch <- nil
	close(ch)
	return ch
}

type fakeProcess struct {
	mu     sync.Mutex
	reason string
	log    *[]string
	done   chan struct{}
}

func (p *fakeProcess) RequestExit(_ context.Context, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reason = reason
	*p.log = append(*p.log, "exit")
	close(p.done)
}

type countingRecorder struct {
	mu    sync.Mutex
	plays map[string]int
	shuts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{plays: map[string]int{}, shuts: map[string]int{}}
}

func (r *countingRecorder) RecordVoicePlay(outcome string) {
	r.mu.Lock()
	r.plays[outcome]++
	r.mu.Unlock()
}

func (r *countingRecorder) RecordShutdown(outcome string) {
	r.mu.Lock()
	r.shuts[outcome]++
	r.mu.Unlock()
}

func runHost(t *testing.T) *hostthread.Scheduler {
	t.Helper()
	s := hostthread.NewScheduler(hostthread.Config{QueueSize: 64, TickInterval: time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

// --- PlayVoice ---

func TestVoiceUseCase_PlayVoice(t *testing.T) {
	player := &recordingPlayer{}
	rec := newCountingRecorder()
	uc := NewVoiceUseCase(catalog{"click": true}, player, runHost(t), time.Second, zap.NewNop())
	uc.SetRecorder(rec)

	res, err := uc.PlayVoice(context.Background(), "click")
	require.Nil(t, err)
	assert.Equal(t, "click", res.VoiceID)
	assert.Equal(t, []string{"click"}, player.played)
	assert.Equal(t, 1, rec.plays[OutcomeOK])
}

func TestPlayResult_ClientWireShape(t *testing.T) {
	// 客户端直接解码用例结果
	var client *api.PlayVoiceData = &PlayResult{VoiceID: "click"}

	raw, err := json.Marshal(client)
	require.NoError(t, err)
	assert.JSONEq(t, `{"voiceId":"click"}`, string(raw))
}

func TestVoiceUseCase_Validation(t *testing.T) {
	player := &recordingPlayer{}
	uc := NewVoiceUseCase(catalog{"click": true}, player, runHost(t), time.Second, nil)

	tests := []struct {
		name string
		id   string
		code types.ErrorCode
	}{
		{"empty", "", types.ErrBadRequest},
		{"blank", "   ", types.ErrBadRequest},
		{"unknown", "nope", types.ErrNotFound},
		{"case sensitive", "Click", types.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.PlayVoice(context.Background(), tt.id)
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
		})
	}
	assert.Empty(t, player.played, "rejected requests must not reach the host thread")
}

func TestVoiceUseCase_ActionFailure(t *testing.T) {
	player := &recordingPlayer{err: errors.New("device lost")}
	uc := NewVoiceUseCase(catalog{"click": true}, player, runHost(t), time.Second, zap.NewNop())

	_, err := uc.PlayVoice(context.Background(), "click")
	require.NotNil(t, err)
	assert.Equal(t, types.ErrInternalError, err.Code)
	assert.Contains(t, err.Detail(), "device lost")
}

func TestVoiceUseCase_RemovedAfterCheck(t *testing.T) {
	player := &recordingPlayer{err: types.NewError(types.ErrNotFound, "gone")}
	uc := NewVoiceUseCase(catalog{"click": true}, player, runHost(t), time.Second, zap.NewNop())

	_, err := uc.PlayVoice(context.Background(), "click")
	require.NotNil(t, err)
	assert.Equal(t, types.ErrNotFound, err.Code)
}

func TestVoiceUseCase_HostTimeout(t *testing.T) {
	// 宿主线程从不 Pump
	s := hostthread.NewScheduler(hostthread.DefaultConfig(), zap.NewNop())
	rec := newCountingRecorder()
	uc := NewVoiceUseCase(catalog{"click": true}, &recordingPlayer{}, s, 20*time.Millisecond, zap.NewNop())
	uc.SetRecorder(rec)

	_, err := uc.PlayVoice(context.Background(), "click")
	require.NotNil(t, err)
	assert.Equal(t, types.ErrTimeout, err.Code)
	assert.Equal(t, 1, rec.plays[OutcomeTimeout])
}

func TestVoiceUseCase_ClientGone(t *testing.T) {
	s := hostthread.NewScheduler(hostthread.DefaultConfig(), zap.NewNop())
	uc := NewVoiceUseCase(catalog{"click": true}, &recordingPlayer{}, s, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.PlayVoice(ctx, "click")
	require.NotNil(t, err)
	assert.Equal(t, types.ErrTimeout, err.Code)
}

func TestVoiceUseCase_QueueClosed(t *testing.T) {
	s := hostthread.NewScheduler(hostthread.DefaultConfig(), zap.NewNop())
	s.Close()
	uc := NewVoiceUseCase(catalog{"click": true}, &recordingPlayer{}, s, time.Second, zap.NewNop())

	_, err := uc.PlayVoice(context.Background(), "click")
	require.NotNil(t, err)
	assert.Equal(t, types.ErrQueueClosed, err.Code)
}

func TestVoiceUseCase_ConcurrentPlaysNeverOverlap(t *testing.T) {
	const n = 32
	ids := catalog{}
	for i := 0; i < n; i++ {
		ids[fmt.Sprintf("v%d", i)] = true
	}
	player := &recordingPlayer{}
	uc := NewVoiceUseCase(ids, player, runHost(t), 5*time.Second, zap.NewNop())

	var wg sync.WaitGroup
	errs := make(chan *types.Error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := uc.PlayVoice(context.Background(), fmt.Sprintf("v%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	assert.Len(t, player.played, n)
	assert.False(t, player.overlap, "host actions must never interleave")
}

// --- Shutdown ---

func TestShutdownUseCase_AckBeforeTeardown(t *testing.T) {
	var mu sync.Mutex
	var order []string
	stopper := &fakeStopper{log: &order}
	proc := &fakeProcess{log: &order, done: make(chan struct{})}
	rec := newCountingRecorder()

	uc := NewShutdownUseCase(stopper, runHost(t), proc, zap.NewNop())
	uc.SetRecorder(rec)

	err := uc.Shutdown(context.Background(), func() error {
		mu.Lock()
		order = append(order, "ack")
		mu.Unlock()
		return nil
	})
	require.Nil(t, err)

	select {
	case <-proc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("exit was never requested")
	}
	uc.Wait()

	assert.Equal(t, []string{"ack", "stop", "exit"}, order)
	assert.Equal(t, ExitReason, proc.reason)
	assert.True(t, uc.InProgress())
	assert.Equal(t, 1, rec.shuts[OutcomeOK])
}

func TestShutdownUseCase_AckFailureTearsNothingDown(t *testing.T) {
	var order []string
	stopper := &fakeStopper{log: &order}
	proc := &fakeProcess{log: &order, done: make(chan struct{})}
	uc := NewShutdownUseCase(stopper, runHost(t), proc, zap.NewNop())

	err := uc.Shutdown(context.Background(), func() error { return errors.New("broken pipe") })
	require.NotNil(t, err)
	assert.Equal(t, types.ErrInternalError, err.Code)

	uc.Wait()
	assert.Equal(t, 0, stopper.calls)
	assert.False(t, uc.InProgress())
	assert.Empty(t, order)
}

func TestShutdownUseCase_RepeatedRequestsTearDownOnce(t *testing.T) {
	var order []string
	stopper := &fakeStopper{log: &order}
	proc := &fakeProcess{log: &order, done: make(chan struct{})}
	uc := NewShutdownUseCase(stopper, runHost(t), proc, zap.NewNop())

	acks := 0
	for i := 0; i < 3; i++ {
		err := uc.Shutdown(context.Background(), func() error {
			acks++
			return nil
		})
		require.Nil(t, err)
	}
	uc.Wait()
	<-proc.done

	assert.Equal(t, 3, acks, "every request is acknowledged")
	assert.Equal(t, 1, stopper.calls)
}

func TestShutdownUseCase_WithoutProcessControl(t *testing.T) {
	var order []string
	stopper := &fakeStopper{log: &order}
	uc := NewShutdownUseCase(stopper, runHost(t), nil, nil)

	require.Nil(t, uc.Shutdown(context.Background(), func() error { return nil }))
	uc.Wait()
	assert.Equal(t, []string{"stop"}, order)
}
