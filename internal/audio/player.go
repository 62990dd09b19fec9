package audio

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/BaSui01/mascotctl/types"
	"go.uber.org/zap"
)

// Backend 实际发声的设备。只会在宿主线程上被调用。
type Backend interface {
	Play(clip Clip) error
	Stop(clip Clip)
}

// Player 语音播放器：同一时刻只有一条语音，新的播放请求替换正在播放的语音。
//
// Player 不是并发安全的，只能在宿主线程上使用（通过 hostthread.Scheduler）。
type Player struct {
	library *Library
	backend Backend
	logger  *zap.Logger

	current *Clip
	plays   int64
}

// NewPlayer 创建播放器
func NewPlayer(library *Library, backend Backend, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		backend = NewLogBackend(logger)
	}
	return &Player{
		library: library,
		backend: backend,
		logger:  logger.With(zap.String("component", "voice_player")),
	}
}

// PlayVoice 开始播放语音，播放开始即返回（不等待播放结束）。
func (p *Player) PlayVoice(id string) error {
	clip, ok := p.library.Voice(id)
	if !ok {
		return types.Errorf(types.ErrNotFound, "voice %q not found", id)
	}

	if p.current != nil {
		p.backend.Stop(*p.current)
		p.logger.Debug("voice replaced", zap.String("previous", p.current.ID), zap.String("next", id))
		p.current = nil
	}

	if err := p.backend.Play(clip); err != nil {
		return fmt.Errorf("play voice %s: %w", id, err)
	}
	p.current = &clip
	p.plays++

	p.logger.Info("voice playback started", zap.String("voice_id", id), zap.String("path", clip.Path))
	return nil
}

// Stop 停止当前语音
func (p *Player) Stop() {
	if p.current == nil {
		return
	}
	p.backend.Stop(*p.current)
	p.logger.Debug("voice playback stopped", zap.String("voice_id", p.current.ID))
	p.current = nil
}

// Current 返回当前语音
func (p *Player) Current() (Clip, bool) {
	if p.current == nil {
		return Clip{}, false
	}
	return *p.current, true
}

// Plays 返回累计播放次数
func (p *Player) Plays() int64 { return p.plays }

// =============================================================================
// 🔈 Backends
// =============================================================================

// LogBackend 只记录日志，用于无音频设备的环境。
type LogBackend struct {
	logger *zap.Logger
}

// NewLogBackend 创建日志后端
func NewLogBackend(logger *zap.Logger) *LogBackend {
	return &LogBackend{logger: logger.With(zap.String("backend", "log"))}
}

func (b *LogBackend) Play(clip Clip) error {
	b.logger.Info("play", zap.String("voice_id", clip.ID), zap.String("path", clip.Path))
	return nil
}

func (b *LogBackend) Stop(clip Clip) {
	b.logger.Debug("stop", zap.String("voice_id", clip.ID))
}

// CommandBackend 通过外部播放器命令播放语音文件，例如 afplay / aplay / ffplay。
type CommandBackend struct {
	command []string
	logger  *zap.Logger

	mu      sync.Mutex
	running map[string]*exec.Cmd
}

// NewCommandBackend 创建命令后端，command[0] 为可执行文件，文件路径追加在最后。
func NewCommandBackend(command []string, logger *zap.Logger) *CommandBackend {
	return &CommandBackend{
		command: append([]string(nil), command...),
		logger:  logger.With(zap.String("backend", "command")),
		running: make(map[string]*exec.Cmd),
	}
}

func (b *CommandBackend) Play(clip Clip) error {
	if len(b.command) == 0 {
		return fmt.Errorf("no player command configured")
	}
	if clip.Path == "" {
		// 内置语音没有对应文件
		b.logger.Info("builtin voice has no file; skipping playback", zap.String("voice_id", clip.ID))
		return nil
	}

	args := append(append([]string(nil), b.command[1:]...), clip.Path)
	cmd := exec.Command(b.command[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	b.mu.Lock()
	b.running[clip.ID] = cmd
	b.mu.Unlock()

	go func() {
		err := cmd.Wait()
		b.mu.Lock()
		if b.running[clip.ID] == cmd {
			delete(b.running, clip.ID)
		}
		b.mu.Unlock()
		if err != nil {
			b.logger.Debug("player exited", zap.String("voice_id", clip.ID), zap.Error(err))
		}
	}()
	return nil
}

func (b *CommandBackend) Stop(clip Clip) {
	b.mu.Lock()
	cmd := b.running[clip.ID]
	b.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}
	if err := cmd.Process.Kill(); err != nil {
		b.logger.Debug("kill player failed", zap.String("voice_id", clip.ID), zap.Error(err))
	}
}
