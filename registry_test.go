package envs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/envs/probe"
)

// recordingLoader remembers every path it was asked to load.
type recordingLoader struct {
	paths []string
	err   error
}

func (l *recordingLoader) Load(path string) error {
	l.paths = append(l.paths, path)
	return l.err
}

func newTestRegistry(t *testing.T, vars map[string]string, opts ...RegistryOption) (*Registry, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	base := []RegistryOption{
		WithRuntime(probe.NewMap(vars)),
		WithLogger(zap.New(core)),
	}
	return New(append(base, opts...)...), logs
}

func writeEnvFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestGetNowEnvGeneralRuntime(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  string
	}{
		{name: "development", value: ptr("development"), want: Develop},
		{name: "staging", value: ptr("staging"), want: Staging},
		{name: "production", value: ptr("production"), want: Release},
		{name: "mixed case", value: ptr("Production"), want: Release},
		{name: "custom kept lowercased", value: ptr("QA"), want: "qa"},
		{name: "empty", value: ptr(""), want: DefaultEnv},
		{name: "unset", value: nil, want: DefaultEnv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{}
			if tt.value != nil {
				vars[DefaultEnvNameVar] = *tt.value
			}
			r, _ := newTestRegistry(t, vars)
			assert.Equal(t, tt.want, r.GetNowEnv())
		})
	}
}

func TestGetNowEnvConstrainedRuntime(t *testing.T) {
	tests := map[string]string{
		"develop": Develop,
		"trial":   Staging,
		"release": Release,
		"Trial":   Staging,
		"gray":    "gray",
		"":        DefaultEnv,
	}

	for version, want := range tests {
		t.Run(version, func(t *testing.T) {
			r := New(WithRuntime(probe.MiniProgram{Version: version}))
			assert.Equal(t, want, r.GetNowEnv())
		})
	}
}

func TestGetNowEnvUnknownRuntimeWarns(t *testing.T) {
	r, logs := newTestRegistry(t, nil, WithRuntime(probe.None{}))

	assert.Equal(t, DefaultEnv, r.GetNowEnv())
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestGetNowEnvCustomVariable(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{"GO_ENV": "staging"}, WithEnvNameVar("GO_ENV"))
	assert.Equal(t, Staging, r.GetNowEnv())
}

func TestGetNowEnvIsCached(t *testing.T) {
	env := probe.NewMap(map[string]string{DefaultEnvNameVar: "development"})
	r := New(WithRuntime(env))

	require.Equal(t, Develop, r.GetNowEnv())
	require.NoError(t, env.Setenv(DefaultEnvNameVar, "production"))
	assert.Equal(t, Develop, r.GetNowEnv(), "cached name should survive ambient changes")

	require.NoError(t, r.Init(InitOptions{LoadDotEnv: Bool(false)}))
	assert.Equal(t, Release, r.GetNowEnv(), "Init should reset the cache")
}

func TestInitTwiceResolvesSameEnv(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{DefaultEnvNameVar: "staging"})

	require.NoError(t, r.Init(InitOptions{Folder: t.TempDir()}))
	first := r.GetNowEnv()
	require.NoError(t, r.Init(InitOptions{Folder: t.TempDir()}))

	assert.Equal(t, first, r.GetNowEnv())
}

func TestInitForcedEnvIsKeptVerbatim(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{DefaultEnvNameVar: "production"})

	require.NoError(t, r.Init(InitOptions{Env: "Canary-EU", LoadDotEnv: Bool(false)}))
	assert.Equal(t, "Canary-EU", r.GetNowEnv())
}

func TestInitRegistersVars(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	err := r.Init(InitOptions{
		LoadDotEnv: Bool(false),
		Vars:       Vars{{Key: "KEY", Spec: StringValue("VALUE")}},
	})
	require.NoError(t, err)

	got, err := r.Get("KEY")
	require.NoError(t, err)
	assert.Equal(t, "VALUE", got)
}

func TestInitStopsAtFirstMissingVar(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	err := r.Init(InitOptions{
		LoadDotEnv: Bool(false),
		Vars: Vars{
			{Key: "FIRST", Spec: StringValue("1")},
			{Key: "MUST_EXIST", Spec: Options{}},
			{Key: "LAST", Spec: StringValue("3")},
		},
	})

	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "MUST_EXIST", missing.Key)
	assert.Equal(t, []string{"FIRST"}, r.Keys())
}

func TestInitAccumulatesAcrossCalls(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	require.NoError(t, r.Init(InitOptions{LoadDotEnv: Bool(false), Vars: Vars{{Key: "A", Spec: StringValue("a")}}}))
	require.NoError(t, r.Init(InitOptions{LoadDotEnv: Bool(false), Vars: Vars{{Key: "B", Spec: StringValue("b")}}}))

	assert.Equal(t, map[string]string{"A": "a", "B": "b"}, r.GetAllByString())
}

func TestInitLoadsOverrideFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, ".staging.env", "DB_HOST=staging-db\nSHARED=specific\n")
	writeEnvFile(t, dir, ".env", "SHARED=generic\nONLY_GENERIC=yes\nFROM_OS=file\n")

	env := probe.NewMap(map[string]string{DefaultEnvNameVar: "staging", "FROM_OS": "os"})
	r := New(WithRuntime(env))

	require.NoError(t, r.Init(InitOptions{
		Folder: dir,
		Vars: Vars{
			{Key: "DB_HOST", Spec: Options{}},
			{Key: "SHARED", Spec: Options{}},
			{Key: "ONLY_GENERIC", Spec: BoolValue(false)},
			{Key: "FROM_OS", Spec: Options{}},
		},
	}))

	assert.Equal(t, "staging-db", r.GetByString("DB_HOST"))
	assert.Equal(t, "specific", r.GetByString("SHARED"))
	assert.True(t, r.GetByBoolean("ONLY_GENERIC"))
	assert.Equal(t, "os", r.GetByString("FROM_OS"))
}

func TestInitEnvPathIgnoresFolder(t *testing.T) {
	loader := &recordingLoader{}
	r, _ := newTestRegistry(t, nil, WithLoader(loader))

	require.NoError(t, r.Init(InitOptions{Env: Develop, Folder: "/ignored", EnvPath: "/etc/app/custom.env"}))
	assert.Equal(t, []string{"/etc/app/custom.env"}, loader.paths)
}

func TestInitFolderPaths(t *testing.T) {
	loader := &recordingLoader{}
	r, _ := newTestRegistry(t, nil, WithLoader(loader))

	require.NoError(t, r.Init(InitOptions{Env: Develop, Folder: "/srv/app"}))
	assert.Equal(t, []string{
		filepath.Join("/srv/app", ".develop.env"),
		filepath.Join("/srv/app", ".env"),
	}, loader.paths)
}

func TestInitDefaultFolderIsWorkingDirectory(t *testing.T) {
	loader := &recordingLoader{}
	r, _ := newTestRegistry(t, nil, WithLoader(loader))
	r.getwd = func() (string, error) { return "/work", nil }

	require.NoError(t, r.Init(InitOptions{Env: Release}))
	assert.Equal(t, []string{
		filepath.Join("/work", ".release.env"),
		filepath.Join("/work", ".env"),
	}, loader.paths)
}

func TestInitWorkingDirectoryError(t *testing.T) {
	r, _ := newTestRegistry(t, nil, WithLoader(&recordingLoader{}))
	r.getwd = func() (string, error) { return "", errors.New("gone") }

	assert.Error(t, r.Init(InitOptions{}))
}

func TestInitLoadDotEnvDefaults(t *testing.T) {
	t.Run("general runtime loads", func(t *testing.T) {
		loader := &recordingLoader{}
		r, _ := newTestRegistry(t, nil, WithLoader(loader))
		require.NoError(t, r.Init(InitOptions{Folder: t.TempDir()}))
		assert.Len(t, loader.paths, 2)
	})

	t.Run("constrained runtime skips", func(t *testing.T) {
		loader := &recordingLoader{}
		r := New(WithRuntime(probe.MiniProgram{Version: "trial"}), WithLoader(loader))
		require.NoError(t, r.Init(InitOptions{}))
		assert.Empty(t, loader.paths)
	})

	t.Run("explicit flag wins", func(t *testing.T) {
		loader := &recordingLoader{}
		r := New(WithRuntime(probe.MiniProgram{}), WithLoader(loader))
		require.NoError(t, r.Init(InitOptions{LoadDotEnv: Bool(true), EnvPath: "x.env"}))
		assert.Equal(t, []string{"x.env"}, loader.paths)
	})
}

func TestInitPropagatesLoaderError(t *testing.T) {
	boom := errors.New("boom")
	r, _ := newTestRegistry(t, nil, WithLoader(&recordingLoader{err: boom}))

	err := r.Init(InitOptions{Folder: t.TempDir(), Vars: Vars{{Key: "K", Spec: StringValue("v")}}})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, r.Keys(), "vars must not be registered after a loader failure")
}

func TestRegisterAmbientOverridesEverything(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{DefaultEnvNameVar: "staging", "API_URL": "http://ambient"})

	require.NoError(t, r.Register("API_URL", Options{
		Default: "http://default",
		Env:     map[string]any{Staging: "http://staging"},
	}))

	got, err := r.Get("API_URL")
	require.NoError(t, err)
	assert.Equal(t, "http://ambient", got)
}

func TestRegisterWithoutOverrideIgnoresAmbient(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{DefaultEnvNameVar: "staging", "API_URL": "http://ambient"})

	require.NoError(t, r.Register("API_URL", Options{
		Default:  "http://default",
		Env:      map[string]any{Staging: "http://staging"},
		Override: Bool(false),
	}))
	assert.Equal(t, "http://staging", r.GetByString("API_URL"))
}

func TestRegisterFallsBackToDefault(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{DefaultEnvNameVar: "development"})

	require.NoError(t, r.Register("API_URL", Options{
		Default: "http://default",
		Env:     map[string]any{Release: "http://release"},
	}))
	assert.Equal(t, "http://default", r.GetByString("API_URL"))
}

func TestRegisterEmptyAmbientCountsAsUnset(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{"NAME": ""})

	require.NoError(t, r.Register("NAME", StringValue("fallback")))
	assert.Equal(t, "fallback", r.GetByString("NAME"))
}

func TestRegisterCustomEnvironmentOverride(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	require.NoError(t, r.Init(InitOptions{Env: "canary", LoadDotEnv: Bool(false)}))

	require.NoError(t, r.Register("REPLICAS", Options{
		Default: 1,
		Env:     map[string]any{"canary": 2},
		Type:    TypeNumber,
	}))
	assert.Equal(t, float64(2), r.GetByNumber("REPLICAS"))
}

func TestRegisterMissingRequired(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	err := r.Register("MUST_EXIST", Options{Required: Bool(true)})
	require.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "MUST_EXIST")

	_, registered := r.TypeOf("MUST_EXIST")
	assert.False(t, registered)
}

func TestRegisterOptionalWithoutValue(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	require.NoError(t, r.Register("OPTIONAL", Options{Required: Bool(false), Type: TypeBoolean}))

	assert.Equal(t, "", r.GetByString("OPTIONAL"))
	assert.True(t, r.GetByBoolean("OPTIONAL", true))
	assert.False(t, r.GetByBoolean("OPTIONAL"))

	got, err := r.Get("OPTIONAL")
	require.NoError(t, err)
	assert.Equal(t, false, got)
}

func TestRegisterOptionalStringGetReturnsEmpty(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	require.NoError(t, r.Register("OPTIONAL", Options{Required: Bool(false)}))

	_ = r.GetByString("OPTIONAL")
	got, err := r.Get("OPTIONAL")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestRegisterDuplicateWarns(t *testing.T) {
	r, logs := newTestRegistry(t, nil)

	require.NoError(t, r.Register("KEY", StringValue("first")))
	require.NoError(t, r.Register("KEY", StringValue("second")))

	warnings := logs.FilterMessage("duplicate environment variable register").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "KEY", warnings[0].ContextMap()["key"])
	assert.Equal(t, "second", r.GetByString("KEY"))
}

func TestRegisterDuplicateWarnsBeforeMissingError(t *testing.T) {
	r, logs := newTestRegistry(t, nil)

	require.NoError(t, r.Register("KEY", StringValue("first")))
	err := r.Register("KEY", Options{})
	require.ErrorIs(t, err, ErrMissingRequired)

	assert.Equal(t, 1, logs.FilterMessage("duplicate environment variable register").Len())
	assert.Equal(t, "first", r.GetByString("KEY"))
}

func TestRegisterDuplicateCheckDisabled(t *testing.T) {
	r, logs := newTestRegistry(t, nil)

	require.NoError(t, r.Register("KEY", StringValue("first")))
	require.NoError(t, r.Register("KEY", Options{Default: "second", CheckDuplicate: Bool(false)}))

	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, "second", r.GetByString("KEY"))
}

func TestSetIsRegister(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	require.NoError(t, r.Set("KEY", NumberValue(3)))
	kind, ok := r.TypeOf("KEY")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, kind)
}

func TestMustRegisterPanics(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	assert.Panics(t, func() { r.MustRegister("MUST_EXIST", nil) })
}

func TestShorthandNormalization(t *testing.T) {
	tests := []struct {
		name     string
		spec     Spec
		wantRaw  string
		wantType Type
		wantGet  any
	}{
		{name: "string", spec: StringValue("hello"), wantRaw: "hello", wantType: TypeString, wantGet: "hello"},
		{name: "integer", spec: NumberValue(42), wantRaw: "42", wantType: TypeNumber, wantGet: float64(42)},
		{name: "fraction", spec: NumberValue(0.25), wantRaw: "0.25", wantType: TypeNumber, wantGet: 0.25},
		{name: "bool", spec: BoolValue(true), wantRaw: "true", wantType: TypeBoolean, wantGet: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry(t, nil)
			require.NoError(t, r.Register("KEY", tt.spec))

			assert.Equal(t, tt.wantRaw, r.GetByString("KEY"))
			kind, _ := r.TypeOf("KEY")
			assert.Equal(t, tt.wantType, kind)
			got, err := r.Get("KEY")
			require.NoError(t, err)
			assert.Equal(t, tt.wantGet, got)
		})
	}
}

func TestNonStringValuesAreStringified(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	require.NoError(t, r.Register("PORT", Options{Default: 8080, Type: TypeNumber}))
	require.NoError(t, r.Register("DEBUG", Options{Default: true}))
	require.NoError(t, r.Register("LIMITS", Options{Default: []int{1, 2}, Type: TypeJSON}))

	assert.Equal(t, map[string]string{
		"PORT":   "8080",
		"DEBUG":  "true",
		"LIMITS": "[1,2]",
	}, r.GetAllByString())
}

func ptr(s string) *string {
	return &s
}
