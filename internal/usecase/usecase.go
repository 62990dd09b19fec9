package usecase

import (
	"context"

	"github.com/BaSui01/mascotctl/internal/hostthread"
)

// =============================================================================
// 🔌 协作者接口
// =============================================================================

// VoiceCatalog 查询语音是否存在，可在任意 goroutine 调用。
type VoiceCatalog interface {
	HasVoice(id string) bool
}

// VoicePlayer 播放指定语音，只能在宿主线程上调用。
type VoicePlayer interface {
	PlayVoice(id string) error
}

// HostScheduler 将动作投递到宿主线程执行。
type HostScheduler interface {
	Submit(ctx context.Context, name string, action hostthread.Action, opts ...hostthread.SubmitOption) (*hostthread.Future, error)
}

// ProcessControl 请求进程退出，只能在宿主线程上调用。
type ProcessControl interface {
	RequestExit(ctx context.Context, reason string)
}

// ServerStopper 异步停止控制面服务器。
type ServerStopper interface {
	StopAsync() <-chan error
}

// Recorder 记录用例结果
type Recorder interface {
	RecordVoicePlay(outcome string)
	RecordShutdown(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordVoicePlay(string) {}
func (nopRecorder) RecordShutdown(string)  {}
