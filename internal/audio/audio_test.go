package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BaSui01/mascotctl/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	played  []string
	stopped []string
	failOn  string
}

func (b *fakeBackend) Play(clip Clip) error {
	if clip.ID == b.failOn {
		return errors.New("device lost")
	}
	b.played = append(b.played, clip.ID)
	return nil
}

func (b *fakeBackend) Stop(clip Clip) {
	b.stopped = append(b.stopped, clip.ID)
}

func writeVoice(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o644))
}

// --- Library ---

func TestLibrary_BuiltinOnly(t *testing.T) {
	lib := NewLibrary(LibraryConfig{Builtin: []string{"click", " ", "start"}}, zap.NewNop())

	assert.True(t, lib.HasVoice("click"))
	assert.True(t, lib.HasVoice("start"))
	assert.False(t, lib.HasVoice(""))
	assert.Equal(t, []string{"click", "start"}, lib.IDs())
}

func TestLibrary_LoadMissingFolder(t *testing.T) {
	lib := NewLibrary(LibraryConfig{
		Dir:     filepath.Join(t.TempDir(), "missing"),
		Builtin: []string{"click"},
	}, zap.NewNop())

	n, err := lib.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, lib.HasVoice("click"))
}

func TestLibrary_LoadFolder(t *testing.T) {
	dir := t.TempDir()
	writeVoice(t, dir, "hello.wav")
	writeVoice(t, dir, "Bye.MP3")
	writeVoice(t, dir, "notes.txt")
	writeVoice(t, dir, "click.ogg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.wav"), 0o755))

	lib := NewLibrary(LibraryConfig{
		Dir:        dir,
		Extensions: []string{"wav", ".mp3", ".OGG"},
		Builtin:    []string{"click"},
	}, zap.NewNop())

	n, err := lib.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"Bye", "click", "hello"}, lib.IDs())

	clip, ok := lib.Voice("click")
	require.True(t, ok)
	assert.True(t, clip.Builtin)
	assert.Equal(t, filepath.Join(dir, "click.ogg"), clip.Path)

	assert.False(t, lib.HasVoice("notes"))
	assert.False(t, lib.HasVoice("sub"))

	// 删除文件后重新加载
	require.NoError(t, os.Remove(filepath.Join(dir, "hello.wav")))
	_, err = lib.Load()
	require.NoError(t, err)
	assert.False(t, lib.HasVoice("hello"))
	assert.True(t, lib.HasVoice("click"))
}

// --- Player ---

func TestPlayer_PlayReplacesCurrent(t *testing.T) {
	lib := NewLibrary(LibraryConfig{Builtin: []string{"click", "start"}}, zap.NewNop())
	backend := &fakeBackend{}
	p := NewPlayer(lib, backend, zap.NewNop())

	require.NoError(t, p.PlayVoice("click"))
	require.NoError(t, p.PlayVoice("start"))

	assert.Equal(t, []string{"click", "start"}, backend.played)
	assert.Equal(t, []string{"click"}, backend.stopped)

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "start", cur.ID)
	assert.Equal(t, int64(2), p.Plays())

	p.Stop()
	_, ok = p.Current()
	assert.False(t, ok)
	assert.Equal(t, []string{"click", "start"}, backend.stopped)

	// 没有正在播放的语音时 Stop 是空操作
	p.Stop()
	assert.Len(t, backend.stopped, 2)
}

func TestPlayer_UnknownVoice(t *testing.T) {
	lib := NewLibrary(LibraryConfig{Builtin: []string{"click"}}, zap.NewNop())
	backend := &fakeBackend{}
	p := NewPlayer(lib, backend, zap.NewNop())

	err := p.PlayVoice("unknown")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
	assert.Empty(t, backend.played)
}

func TestPlayer_BackendFailure(t *testing.T) {
	lib := NewLibrary(LibraryConfig{Builtin: []string{"click"}}, zap.NewNop())
	p := NewPlayer(lib, &fakeBackend{failOn: "click"}, zap.NewNop())

	err := p.PlayVoice("click")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestPlayer_DefaultsToLogBackend(t *testing.T) {
	lib := NewLibrary(LibraryConfig{Builtin: []string{"click"}}, zap.NewNop())
	p := NewPlayer(lib, nil, nil)
	assert.NoError(t, p.PlayVoice("click"))
}

func TestCommandBackend_BuiltinWithoutFile(t *testing.T) {
	b := NewCommandBackend([]string{"definitely-not-a-player"}, zap.NewNop())
	assert.NoError(t, b.Play(Clip{ID: "click", Builtin: true}))

	err := b.Play(Clip{ID: "hello", Path: "/tmp/hello.wav"})
	assert.Error(t, err, "missing executable must surface as an error")

	empty := NewCommandBackend(nil, zap.NewNop())
	assert.Error(t, empty.Play(Clip{ID: "x", Path: "/tmp/x.wav"}))
}

// --- Watcher ---

func TestWatcher_ReloadsOnNewFile(t *testing.T) {
	dir := t.TempDir()
	lib := NewLibrary(LibraryConfig{Dir: dir, Extensions: []string{".wav"}}, zap.NewNop())
	_, err := lib.Load()
	require.NoError(t, err)

	w := NewWatcher(lib, 20*time.Millisecond, zap.NewNop())
	var reloads atomic.Int32
	w.OnReload(func(int) { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() { _ = w.Close() })

	assert.Error(t, w.Start(ctx), "double start should fail")

	writeVoice(t, dir, "fresh.wav")

	require.Eventually(t, func() bool { return lib.HasVoice("fresh") }, 3*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
}

func TestWatcher_StartMissingDir(t *testing.T) {
	lib := NewLibrary(LibraryConfig{Dir: filepath.Join(t.TempDir(), "missing")}, zap.NewNop())
	w := NewWatcher(lib, 0, zap.NewNop())
	assert.Error(t, w.Start(context.Background()))
	assert.NoError(t, w.Close())
}
