package shader

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Annotation
		wantErr bool
	}{
		{"plain code", "let x = 1.0;", nil, false},
		{"ordinary comment", "// a comment", nil, false},
		{"include", "//@scrollbot:include camera", &Annotation{Type: AnnotationTypeInclude, Args: []string{"camera"}, Line: 3}, false},
		{"include with spaces", "   // @scrollbot:include  object ", &Annotation{Type: AnnotationTypeInclude, Args: []string{"object"}, Line: 3}, false},
		{"missing chunk", "//@scrollbot:include", nil, true},
		{"unknown type", "//@scrollbot:group 0 0", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnnotation(tt.line, 3)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@scrollbot:include camera\n//@scrollbot:include camera\nfn f() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct CameraUniform"))
	assert.Equal(t, []string{"camera"}, pp.Includes())
	assert.Contains(t, out, "fn f() {}")
}

func TestPreProcessorUnknownChunk(t *testing.T) {
	_, err := NewPreProcessor().Process("//@scrollbot:include nope")
	assert.ErrorContains(t, err, "unknown include")
}

func TestLibraryLoadsBuiltins(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)
	assert.ElementsMatch(t, Programs, lib.Keys())

	tube, err := lib.Shader(ProgramTubeFloor)
	require.NoError(t, err)
	assert.Equal(t, 1, tube.Version())
	for _, name := range []string{"uTime", "uReactiveLength", "uLineLength"} {
		assert.Contains(t, tube.Source(), name)
	}
	assert.NotContains(t, tube.Source(), "@scrollbot:")
	assert.Equal(t, tube.Source(), tube.Module().WGSLDescriptor.Code)

	robot, err := lib.Shader(ProgramRobot)
	require.NoError(t, err)
	assert.Contains(t, robot.Source(), "uAdjustmentY")

	_, err = lib.Shader("missing")
	assert.ErrorIs(t, err, ErrUnknownProgram)
}

func TestLibraryOverrideAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProgramBaked+".wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// first\n"), 0o644))

	lib, err := NewLibrary(WithOverrideDir(dir))
	require.NoError(t, err)
	s, err := lib.Shader(ProgramBaked)
	require.NoError(t, err)
	assert.Contains(t, s.Source(), "// first")

	require.NoError(t, os.WriteFile(path, []byte("// second\n"), 0o644))
	s, err = lib.Reload(ProgramBaked)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Version())
	assert.Contains(t, s.Source(), "// second")

	key, ok := lib.KeyForPath(path)
	assert.True(t, ok)
	assert.Equal(t, ProgramBaked, key)
	_, ok = lib.KeyForPath(filepath.Join(dir, "notes.txt"))
	assert.False(t, ok)
}

func TestLibraryReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProgramRobot+".wgsl")
	lib, err := NewLibrary(WithOverrideDir(dir))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("//@scrollbot:include nope\n"), 0o644))
	_, err = lib.Reload(ProgramRobot)
	require.Error(t, err)

	s, err := lib.Shader(ProgramRobot)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Version())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	lib, err := NewLibrary(WithOverrideDir(dir))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan Shader, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, lib, slog.New(slog.NewTextHandler(io.Discard, nil)), func(s Shader) { reloaded <- s })
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, ProgramTubeFloor+".wgsl"), []byte("// edited\n"), 0o644)
		select {
		case s := <-reloaded:
			return s.Key() == ProgramTubeFloor && strings.Contains(s.Source(), "// edited")
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchRequiresOverrideDir(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)
	err = Watch(context.Background(), lib, slog.Default(), nil)
	assert.Error(t, err)
}
