package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BaSui01/mascotctl/api"
	"github.com/BaSui01/mascotctl/types"
	"go.uber.org/zap"
)

// 语音播放结果标签
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeTimeout  = "timeout"
	OutcomeFailed   = "failed"
)

// PlayResult 播放成功的结果，与客户端共用同一线上结构
type PlayResult = api.PlayVoiceData

// VoiceUseCase 播放语音用例
type VoiceUseCase struct {
	catalog       VoiceCatalog
	player        VoicePlayer
	scheduler     HostScheduler
	actionTimeout time.Duration
	recorder      Recorder
	logger        *zap.Logger
}

// NewVoiceUseCase 创建播放语音用例。actionTimeout 限制等待宿主线程的时间。
func NewVoiceUseCase(catalog VoiceCatalog, player VoicePlayer, scheduler HostScheduler, actionTimeout time.Duration, logger *zap.Logger) *VoiceUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if actionTimeout <= 0 {
		actionTimeout = 5 * time.Second
	}
	return &VoiceUseCase{
		catalog:       catalog,
		player:        player,
		scheduler:     scheduler,
		actionTimeout: actionTimeout,
		recorder:      nopRecorder{},
		logger:        logger.With(zap.String("component", "voice_usecase")),
	}
}

// SetRecorder 设置结果记录器
func (u *VoiceUseCase) SetRecorder(r Recorder) {
	if r != nil {
		u.recorder = r
	}
}

// PlayVoice 在宿主线程上播放语音，播放开始后返回。
// 正在播放的语音会被替换，不视为错误。
func (u *VoiceUseCase) PlayVoice(ctx context.Context, voiceID string) (*PlayResult, *types.Error) {
	if strings.TrimSpace(voiceID) == "" {
		u.recorder.RecordVoicePlay(OutcomeRejected)
		return nil, types.NewError(types.ErrBadRequest, "voiceId is required")
	}
	if !u.catalog.HasVoice(voiceID) {
		u.recorder.RecordVoicePlay(OutcomeNotFound)
		return nil, types.Errorf(types.ErrNotFound, "voice %q not found", voiceID)
	}

	waitCtx, cancel := context.WithTimeout(ctx, u.actionTimeout)
	defer cancel()

	future, err := u.scheduler.Submit(waitCtx, "play_voice", func(context.Context) (any, error) {
		return nil, u.player.PlayVoice(voiceID)
	})
	if err != nil {
		u.recorder.RecordVoicePlay(OutcomeFailed)
		return nil, types.Internal("failed to schedule voice playback", err)
	}

	if _, err := future.Wait(waitCtx); err != nil {
		return nil, u.classify(ctx, voiceID, err)
	}

	u.recorder.RecordVoicePlay(OutcomeOK)
	u.logger.Debug("voice played", zap.String("voice_id", voiceID), zap.String("action_id", future.ID()))
	return &PlayResult{VoiceID: voiceID}, nil
}

func (u *VoiceUseCase) classify(ctx context.Context, voiceID string, err error) *types.Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		u.recorder.RecordVoicePlay(OutcomeTimeout)
		u.logger.Warn("host thread did not run play action in time",
			zap.String("voice_id", voiceID),
			zap.Duration("timeout", u.actionTimeout),
		)
		return types.Errorf(types.ErrTimeout, "host thread did not respond within %s", u.actionTimeout).WithCause(err)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		u.recorder.RecordVoicePlay(OutcomeTimeout)
		return types.NewError(types.ErrTimeout, "request cancelled before playback started").WithCause(err)
	case types.IsCode(err, types.ErrNotFound):
		// 检查之后语音文件被移除
		u.recorder.RecordVoicePlay(OutcomeNotFound)
		return types.Errorf(types.ErrNotFound, "voice %q not found", voiceID)
	default:
		u.recorder.RecordVoicePlay(OutcomeFailed)
		u.logger.Error("voice playback failed", zap.String("voice_id", voiceID), zap.Error(err))
		return types.Internal("failed to play voice", err)
	}
}
