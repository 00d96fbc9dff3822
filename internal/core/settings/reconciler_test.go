package settings

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsiassist/internal/core/model"
)

type mockLocal struct {
	LoadFunc func() (model.PartialBreakConfig, bool, error)
	SaveFunc func(config model.BreakConfig) error
	calls    *[]string
}

func (m *mockLocal) LoadBreakConfig() (model.PartialBreakConfig, bool, error) {
	*m.calls = append(*m.calls, "local.load")
	return m.LoadFunc()
}

func (m *mockLocal) SaveBreakConfig(config model.BreakConfig) error {
	*m.calls = append(*m.calls, "local.save")
	if m.SaveFunc == nil {
		return nil
	}
	return m.SaveFunc(config)
}

type mockRemote struct {
	ConfigFunc    func(ctx context.Context) (model.PartialBreakConfig, error)
	SetConfigFunc func(ctx context.Context, config model.BreakConfig) error
	SetModeFunc   func(ctx context.Context, mode model.OperationMode) error
	pushed        []model.BreakConfig
	calls         *[]string
}

func (m *mockRemote) Config(ctx context.Context) (model.PartialBreakConfig, error) {
	*m.calls = append(*m.calls, "remote.config")
	return m.ConfigFunc(ctx)
}

func (m *mockRemote) SetConfig(ctx context.Context, config model.BreakConfig) error {
	*m.calls = append(*m.calls, "remote.set_config")
	m.pushed = append(m.pushed, config)
	if m.SetConfigFunc == nil {
		return nil
	}
	return m.SetConfigFunc(ctx, config)
}

func (m *mockRemote) SetMode(ctx context.Context, mode model.OperationMode) error {
	*m.calls = append(*m.calls, "remote.set_mode:"+string(mode))
	if m.SetModeFunc == nil {
		return nil
	}
	return m.SetModeFunc(ctx, mode)
}

func intPtr(value int) *int { return &value }

func newFixture(local *mockLocal, remote *mockRemote) (*Reconciler, *[]string, *bytes.Buffer) {
	calls := &[]string{}
	local.calls = calls
	remote.calls = calls
	logs := &bytes.Buffer{}
	return New(local, remote, Options{Logger: log.New(logs, "", 0)}), calls, logs
}

func emptyLocal() *mockLocal {
	return &mockLocal{LoadFunc: func() (model.PartialBreakConfig, bool, error) {
		return model.PartialBreakConfig{}, false, nil
	}}
}

func TestReconcileLocalWinsAndIsPushed(t *testing.T) {
	local := &mockLocal{LoadFunc: func() (model.PartialBreakConfig, bool, error) {
		return model.PartialBreakConfig{MicrobreakInterval: intPtr(250)}, true, nil
	}}
	remote := &mockRemote{ConfigFunc: func(ctx context.Context) (model.PartialBreakConfig, error) {
		return model.PartialBreakConfig{MicrobreakInterval: intPtr(180)}, nil
	}}
	reconciler, calls, _ := newFixture(local, remote)

	result, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceLocal, result.Source)
	assert.True(t, result.Pushed)
	assert.Equal(t, 250, result.Config.MicrobreakInterval)
	require.Len(t, remote.pushed, 1)
	assert.Equal(t, 250, remote.pushed[0].MicrobreakInterval)
	assert.Equal(t, []string{"local.load", "remote.set_config"}, *calls)

	active, ok := reconciler.Current()
	assert.True(t, ok)
	assert.Equal(t, result.Config, active)
}

func TestReconcileEmptyLocalUsesRemoteWithoutPush(t *testing.T) {
	remote := &mockRemote{ConfigFunc: func(ctx context.Context) (model.PartialBreakConfig, error) {
		return model.PartialBreakConfig{DailyLimit: intPtr(7200)}, nil
	}}
	reconciler, calls, _ := newFixture(emptyLocal(), remote)

	result, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceRemote, result.Source)
	assert.Equal(t, 7200, result.Config.DailyLimit)
	assert.Equal(t, model.DefaultBreakConfig().MicrobreakDuration, result.Config.MicrobreakDuration)
	assert.Empty(t, remote.pushed)
	assert.Equal(t, []string{"local.load", "remote.config"}, *calls)
}

func TestReconcileLocalFailureFallsThroughToRemote(t *testing.T) {
	local := &mockLocal{LoadFunc: func() (model.PartialBreakConfig, bool, error) {
		return model.PartialBreakConfig{MicrobreakInterval: intPtr(999)}, true, errors.New("parse settings yaml")
	}}
	remote := &mockRemote{ConfigFunc: func(ctx context.Context) (model.PartialBreakConfig, error) {
		return model.PartialBreakConfig{MicrobreakInterval: intPtr(180)}, nil
	}}
	reconciler, _, logs := newFixture(local, remote)

	result, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, result.Source)
	assert.Equal(t, 180, result.Config.MicrobreakInterval)
	assert.Contains(t, logs.String(), "treating as absent")
}

func TestReconcileRemoteFailureKeepsDefaults(t *testing.T) {
	remote := &mockRemote{ConfigFunc: func(ctx context.Context) (model.PartialBreakConfig, error) {
		return model.PartialBreakConfig{}, errors.New("connection refused")
	}}
	reconciler, _, _ := newFixture(emptyLocal(), remote)

	result, err := reconciler.Reconcile(context.Background())
	assert.Error(t, err)
	assert.Equal(t, SourceDefaults, result.Source)
	assert.Equal(t, model.DefaultBreakConfig(), result.Config)

	active, ok := reconciler.Current()
	assert.True(t, ok)
	assert.Equal(t, model.DefaultBreakConfig(), active)
}

func TestReconcileLocalPushFailureKeepsDefaultsActive(t *testing.T) {
	local := &mockLocal{LoadFunc: func() (model.PartialBreakConfig, bool, error) {
		return model.PartialBreakConfig{RestDuration: intPtr(120)}, true, nil
	}}
	remote := &mockRemote{SetConfigFunc: func(ctx context.Context, config model.BreakConfig) error {
		return errors.New("backend down")
	}}
	reconciler, _, _ := newFixture(local, remote)
	updates := reconciler.Subscribe(1)

	result, err := reconciler.Reconcile(context.Background())
	assert.Error(t, err)
	assert.False(t, result.Pushed)
	assert.Equal(t, SourceDefaults, result.Source)
	assert.Equal(t, model.DefaultBreakConfig(), result.Config)
	assert.Equal(t, model.DefaultBreakConfig(), <-updates)
	require.Len(t, remote.pushed, 1)
	assert.Equal(t, 120, remote.pushed[0].RestDuration)
}

func TestReconcileLocalPushFailureKeepsPreviousConfig(t *testing.T) {
	pushFails := false
	local := &mockLocal{LoadFunc: func() (model.PartialBreakConfig, bool, error) {
		return model.PartialBreakConfig{RestDuration: intPtr(120)}, true, nil
	}}
	remote := &mockRemote{SetConfigFunc: func(ctx context.Context, config model.BreakConfig) error {
		if pushFails {
			return errors.New("backend down")
		}
		return nil
	}}
	reconciler, _, _ := newFixture(local, remote)
	_, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)

	local.LoadFunc = func() (model.PartialBreakConfig, bool, error) {
		return model.PartialBreakConfig{RestDuration: intPtr(900)}, true, nil
	}
	pushFails = true
	result, err := reconciler.Reconcile(context.Background())
	assert.Error(t, err)
	assert.Equal(t, SourceLocal, result.Source)
	assert.Equal(t, 120, result.Config.RestDuration)
	active, _ := reconciler.Current()
	assert.Equal(t, 120, active.RestDuration)
}

func TestSaveWritesLocalThenRemote(t *testing.T) {
	remote := &mockRemote{}
	reconciler, calls, _ := newFixture(emptyLocal(), remote)
	updates := reconciler.Subscribe(1)

	config := model.DefaultBreakConfig()
	config.RestInterval = 3600
	require.NoError(t, reconciler.Save(context.Background(), config))

	assert.Equal(t, []string{"local.save", "remote.set_config"}, *calls)
	assert.Equal(t, []model.BreakConfig{config}, remote.pushed)
	assert.Equal(t, config, <-updates)
}

func TestSavePushFailureKeepsPreviousConfig(t *testing.T) {
	remote := &mockRemote{ConfigFunc: func(ctx context.Context) (model.PartialBreakConfig, error) {
		return model.PartialBreakConfig{}, nil
	}}
	reconciler, calls, _ := newFixture(emptyLocal(), remote)
	_, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)
	updates := reconciler.Subscribe(1)
	<-updates

	remote.SetConfigFunc = func(ctx context.Context, config model.BreakConfig) error {
		return errors.New("backend down")
	}
	config := model.DefaultBreakConfig()
	config.MicrobreakDuration = 45
	assert.Error(t, reconciler.Save(context.Background(), config))

	assert.Equal(t, []string{"remote.config", "local.save", "remote.set_config"}, *calls)
	active, _ := reconciler.Current()
	assert.Equal(t, model.DefaultBreakConfig(), active)
	select {
	case update := <-updates:
		t.Fatalf("unexpected config published: %+v", update)
	default:
	}
}

func TestSaveLocalFailureSkipsPush(t *testing.T) {
	local := emptyLocal()
	local.SaveFunc = func(config model.BreakConfig) error { return errors.New("disk full") }
	remote := &mockRemote{}
	reconciler, calls, _ := newFixture(local, remote)

	err := reconciler.Save(context.Background(), model.DefaultBreakConfig())
	assert.Error(t, err)
	assert.Equal(t, []string{"local.save"}, *calls)
	_, ok := reconciler.Current()
	assert.False(t, ok)
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	reconciler, calls, _ := newFixture(emptyLocal(), &mockRemote{})
	config := model.DefaultBreakConfig()
	config.MicrobreakDuration = -1

	assert.Error(t, reconciler.Save(context.Background(), config))
	assert.Empty(t, *calls)
}

func TestSetModePushesOnlyMode(t *testing.T) {
	remote := &mockRemote{ConfigFunc: func(ctx context.Context) (model.PartialBreakConfig, error) {
		return model.PartialBreakConfig{}, nil
	}}
	reconciler, calls, _ := newFixture(emptyLocal(), remote)
	_, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)

	require.NoError(t, reconciler.SetMode(context.Background(), model.ModeQuiet))

	assert.Equal(t, "remote.set_mode:Quiet", (*calls)[len(*calls)-1])
	assert.Empty(t, remote.pushed)
	active, _ := reconciler.Current()
	assert.Equal(t, model.ModeQuiet, active.Mode)
}

func TestSetModeFailureLeavesActiveUntouched(t *testing.T) {
	remote := &mockRemote{
		ConfigFunc: func(ctx context.Context) (model.PartialBreakConfig, error) {
			return model.PartialBreakConfig{}, nil
		},
		SetModeFunc: func(ctx context.Context, mode model.OperationMode) error {
			return errors.New("backend down")
		},
	}
	reconciler, _, _ := newFixture(emptyLocal(), remote)
	_, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Error(t, reconciler.SetMode(context.Background(), model.ModeSuspended))
	active, _ := reconciler.Current()
	assert.Equal(t, model.ModeNormal, active.Mode)

	assert.ErrorIs(t, reconciler.SetMode(context.Background(), "Loud"), model.ErrInvalidMode)
}

func TestCloseClosesSubscribersAndIgnoresLateResults(t *testing.T) {
	release := make(chan struct{})
	remote := &mockRemote{ConfigFunc: func(ctx context.Context) (model.PartialBreakConfig, error) {
		<-release
		return model.PartialBreakConfig{DailyLimit: intPtr(7200)}, nil
	}}
	reconciler, _, _ := newFixture(emptyLocal(), remote)
	updates := reconciler.Subscribe(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = reconciler.Reconcile(context.Background())
	}()

	reconciler.Close()
	reconciler.Close()
	close(release)
	<-done

	_, open := <-updates
	assert.False(t, open)
	_, ok := reconciler.Current()
	assert.False(t, ok)

	late := reconciler.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}
