package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
)

type fake struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (f *fake) Name() string { return f.name }

func (f *fake) Start(context.Context) error {
	*f.events = append(*f.events, "start "+f.name)
	return f.startErr
}

func (f *fake) Stop(context.Context) error {
	*f.events = append(*f.events, "stop "+f.name)
	return f.stopErr
}

type described struct{ fake }

func (d *described) Describe() Description { return Description{Details: "otlp"} }

func TestRegistry_StartStopOrder(t *testing.T) {
	var events []string
	r := NewRegistry(logger.Nop())
	require.NoError(t, r.Register(&fake{name: "a", events: &events}))
	require.NoError(t, r.Register(&fake{name: "b", events: &events}))

	require.NoError(t, r.StartAll(context.Background()))
	require.NoError(t, r.StopAll(context.Background()))
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, events)

	events = nil
	require.NoError(t, r.StopAll(context.Background()))
	assert.Empty(t, events, "stopped components are not stopped twice")
}

func TestRegistry_DuplicateName(t *testing.T) {
	var events []string
	r := NewRegistry(logger.Nop())
	require.NoError(t, r.Register(&fake{name: "a", events: &events}))
	err := r.Register(&fake{name: "a", events: &events})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestRegistry_StartFailureRollsBack(t *testing.T) {
	var events []string
	boom := errors.New("boom")
	r := NewRegistry(logger.Nop())
	require.NoError(t, r.Register(&fake{name: "a", events: &events}))
	require.NoError(t, r.Register(&fake{name: "b", startErr: boom, events: &events}))
	require.NoError(t, r.Register(&fake{name: "c", events: &events}))

	err := r.StartAll(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "starting b")
	assert.Equal(t, []string{"start a", "start b", "stop a"}, events)
}

func TestRegistry_StopJoinsErrors(t *testing.T) {
	var events []string
	e1, e2 := errors.New("one"), errors.New("two")
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&fake{name: "a", stopErr: e1, events: &events}))
	require.NoError(t, r.Register(&fake{name: "b", stopErr: e2, events: &events}))
	require.NoError(t, r.StartAll(context.Background()))

	err := r.StopAll(context.Background())
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestRegistry_GetAndDescribe(t *testing.T) {
	var events []string
	r := NewRegistry(logger.Nop())
	plain := &fake{name: "plain", events: &events}
	require.NoError(t, r.Register(plain))
	require.NoError(t, r.Register(&described{fake{name: "tracing", events: &events}}))

	assert.Same(t, plain, r.Get("plain"))
	assert.Nil(t, r.Get("missing"))
	assert.Equal(t, []Description{
		{Name: "plain"},
		{Name: "tracing", Details: "otlp"},
	}, r.Describe())
}
