package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/catering/core/events"
	"github.com/kilianp07/catering/core/model"
	"github.com/kilianp07/catering/infra/logger"
)

type fakeConn struct {
	subjects   []string
	payloads   [][]byte
	publishErr error
	flushErr   error
	drained    bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func withFakeConn(t *testing.T, fc *fakeConn) {
	t.Helper()
	orig := connect
	connect = func(Config, logger.Logger) (conn, error) { return fc, nil }
	t.Cleanup(func() { connect = orig })
}

func TestStatusPublisher_Publish(t *testing.T) {
	fc := &fakeConn{}
	withFakeConn(t, fc)
	p, err := NewStatusPublisher(Config{URL: "nats://localhost:4222"})
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	snap := []model.VehicleSnapshot{{VehicleID: "cat-1", Status: model.StatusAvailable, CurrentNode: "garage"}}
	require.NoError(t, p.Publish(context.Background(), snap))
	require.Equal(t, []string{DefaultSubject}, fc.subjects)

	var ev events.FleetSnapshotEvent
	require.NoError(t, json.Unmarshal(fc.payloads[0], &ev))
	assert.Equal(t, snap, ev.Vehicles)
	assert.True(t, ev.Time.Equal(at))

	require.NoError(t, p.Close())
	assert.True(t, fc.drained)
}

func TestStatusPublisher_Errors(t *testing.T) {
	boom := errors.New("no responders")
	fc := &fakeConn{publishErr: boom}
	withFakeConn(t, fc)
	p, err := NewStatusPublisher(Config{URL: "nats://localhost:4222", Subject: "fleet"})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Publish(context.Background(), nil), boom)

	fc.publishErr = nil
	fc.flushErr = context.DeadlineExceeded
	assert.ErrorIs(t, p.Publish(context.Background(), nil), context.DeadlineExceeded)
	assert.Equal(t, []string{"fleet"}, fc.subjects)
	assert.JSONEq(t, `[]`, string(mustVehicles(t, fc.payloads[0])))
}

func TestNewStatusPublisher_ConnectError(t *testing.T) {
	orig := connect
	connect = func(Config, logger.Logger) (conn, error) { return nil, errors.New("refused") }
	t.Cleanup(func() { connect = orig })
	_, err := NewStatusPublisher(Config{URL: "nats://nowhere:4222"})
	assert.ErrorContains(t, err, "refused")
}

func mustVehicles(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &m))
	return m["vehicles"]
}
