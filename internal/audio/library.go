package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Clip 是一条可播放的语音。
type Clip struct {
	ID      string `json:"id"`
	Path    string `json:"path,omitempty"`
	Builtin bool   `json:"builtin"`
}

// Library 语音目录：内置 ID + 语音文件夹中的文件（文件名去掉扩展名即 ID）。
// 可被任意 goroutine 并发读取。
type Library struct {
	dir        string
	extensions map[string]struct{}
	builtin    []string
	logger     *zap.Logger

	mu    sync.RWMutex
	clips map[string]Clip
}

// LibraryConfig 语音目录配置
type LibraryConfig struct {
	Dir        string
	Extensions []string
	Builtin    []string
}

// NewLibrary 创建语音目录，未调用 Load 前只包含内置语音。
func NewLibrary(config LibraryConfig, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	exts := make(map[string]struct{}, len(config.Extensions))
	for _, e := range config.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = struct{}{}
	}
	l := &Library{
		dir:        config.Dir,
		extensions: exts,
		builtin:    append([]string(nil), config.Builtin...),
		logger:     logger.With(zap.String("component", "voice_library")),
	}
	l.clips = l.builtinClips()
	return l
}

func (l *Library) builtinClips() map[string]Clip {
	clips := make(map[string]Clip, len(l.builtin))
	for _, id := range l.builtin {
		if id = strings.TrimSpace(id); id != "" {
			clips[id] = Clip{ID: id, Builtin: true}
		}
	}
	return clips
}

// Dir 返回语音文件夹路径
func (l *Library) Dir() string { return l.dir }

// Load 重新扫描语音文件夹。文件夹不存在不算错误，此时只保留内置语音。
// 同名文件覆盖内置语音（带上文件路径）。
func (l *Library) Load() (int, error) {
	clips := l.builtinClips()

	loaded := 0
	if l.dir != "" {
		entries, err := os.ReadDir(l.dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			l.logger.Debug("voice folder does not exist; only builtin voices are available",
				zap.String("dir", l.dir))
		case err != nil:
			return 0, fmt.Errorf("read voice folder %s: %w", l.dir, err)
		default:
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				name := entry.Name()
				ext := strings.ToLower(filepath.Ext(name))
				if _, ok := l.extensions[ext]; !ok {
					continue
				}
				id := strings.TrimSuffix(name, filepath.Ext(name))
				if id == "" {
					continue
				}
				_, isBuiltin := clips[id]
				clips[id] = Clip{ID: id, Path: filepath.Join(l.dir, name), Builtin: isBuiltin}
				loaded++
			}
		}
	}

	l.mu.Lock()
	l.clips = clips
	l.mu.Unlock()

	if loaded == 0 {
		l.logger.Warn("no voice files loaded", zap.String("dir", l.dir), zap.Int("builtin", len(l.builtin)))
	} else {
		l.logger.Info("voice files loaded", zap.String("dir", l.dir), zap.Int("count", loaded))
	}
	return loaded, nil
}

// HasVoice 报告语音 ID 是否已知
func (l *Library) HasVoice(id string) bool {
	_, ok := l.Voice(id)
	return ok
}

// Voice 按 ID 查找语音
func (l *Library) Voice(id string) (Clip, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.clips[id]
	return c, ok
}

// IDs 返回排序后的全部语音 ID
func (l *Library) IDs() []string {
	l.mu.RLock()
	ids := make([]string, 0, len(l.clips))
	for id := range l.clips {
		ids = append(ids, id)
	}
	l.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
