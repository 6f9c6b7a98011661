package rfio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sscomm/simplisafe-rf/internal/message"
	"github.com/sscomm/simplisafe-rf/internal/pulse"
)

type captureLogger struct {
	raw [][]byte
}

func (c *captureLogger) LogRaw(b []byte) {
	c.raw = append(c.raw, append([]byte(nil), b...))
}

// feedPulses drives sim's registered callback through pulses the same
// way a real GPIO line would report them: each pulse's duration is the
// gap leading into the next edge, with a trailing large gap to force
// end-of-transmission.
func feedPulses(sim *SimRawIO, pulses []pulse.Pulse, txPin uint32) {
	levelOf := func(p pulse.Pulse) byte {
		if p.OnMask&(1<<txPin) != 0 {
			return 1
		}
		return 0
	}
	tick := uint32(0)
	sim.PushEdge(levelOf(pulses[0]), tick)
	for i := 1; i < len(pulses); i++ {
		tick += pulses[i-1].Duration
		sim.PushEdge(levelOf(pulses[i]), tick)
	}
	tick += pulses[len(pulses)-1].Duration
	sim.PushEdge(levelOf(pulses[len(pulses)-1])^1, tick+5000)
}

func TestTransceiverRecvDecodesModulatedMessage(t *testing.T) {
	sim := NewSimRawIO()
	logger := &captureLogger{}
	tc := New(sim, pulse.RoleSensor, logger)

	m := message.NewSensorMessage("1R9CL", message.OriginEntrySensor, 3, message.EntryOpen)
	b, err := m.Encode()
	require.NoError(t, err)

	pulses := pulse.Modulate(pulse.RoleSensor, b, 0)
	feedPulses(sim, pulses, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := tc.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, message.KindSensor, got.Kind)
	require.Equal(t, "1R9CL", got.SN)
	require.Equal(t, byte(3), got.Sequence)
	require.Equal(t, message.OriginEntrySensor, got.SensorOrigin)
	require.Equal(t, message.EventByte(message.EntryOpen), got.EventByte)

	require.NotEmpty(t, logger.raw)
	require.Equal(t, b, logger.raw[0])
}

func TestTransceiverRecvBlocksUntilContextDone(t *testing.T) {
	sim := NewSimRawIO()
	tc := New(sim, pulse.RoleKeypad, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := tc.Recv(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransceiverSendEmitsModulatedPulses(t *testing.T) {
	sim := NewSimRawIO()
	tc := New(sim, pulse.RoleKeypad, nil)

	m, err := message.NewKeypadPin("167JC", 0, message.EvDisarmPinRequest, "1234")
	require.NoError(t, err)

	err = tc.Send(context.Background(), m)
	require.NoError(t, err)

	sent := sim.Sent()
	require.Len(t, sent, 1)

	b, err := m.Encode()
	require.NoError(t, err)
	require.Equal(t, pulse.Modulate(pulse.RoleKeypad, b, 0), sent[0])
}

func TestTransceiverCloseFailsPendingRecv(t *testing.T) {
	sim := NewSimRawIO()
	tc := New(sim, pulse.RoleSensor, nil)

	done := make(chan error, 1)
	go func() {
		_, err := tc.Recv(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tc.Close())

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrDriverClosed)
	case <-time.After(time.Second):
		t.Fatal("Recv did not unblock after Close")
	}
}
