package basestation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sscomm/simplisafe-rf/internal/message"
)

type fakeHooks struct {
	mu         sync.Mutex
	alarms     int
	alerts     []AlertType
	sirenStart int
	sirenStop  int
	armedAway  int
	armedHome  int
	disarmed   int
}

func (h *fakeHooks) Alarm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alarms++
}
func (h *fakeHooks) Alert(kind AlertType, subject string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alerts = append(h.alerts, kind)
}
func (h *fakeHooks) ArmAway() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.armedAway++
}
func (h *fakeHooks) ArmHome() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.armedHome++
}
func (h *fakeHooks) Disarm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disarmed++
}
func (h *fakeHooks) DoorChime() {}
func (h *fakeHooks) StartSiren() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sirenStart++
}
func (h *fakeHooks) StopSiren() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sirenStop++
}

func (h *fakeHooks) alarmCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alarms
}

type fakeSender struct {
	mu   sync.Mutex
	sent []*message.Message
}

func (s *fakeSender) Send(ctx context.Context, m *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return nil
}

func (s *fakeSender) last() *message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	return s.sent[len(s.sent)-1]
}

func newTestStation(t *testing.T) (*BaseStation, *fakeHooks, *fakeSender) {
	t.Helper()
	hooks := &fakeHooks{}
	sender := &fakeSender{}
	b, err := New("0BA5E1", "1234", sender, hooks)
	require.NoError(t, err)
	return b, hooks, sender
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestArmAwayCountdownMonotonic(t *testing.T) {
	b, hooks, _ := newTestStation(t)
	b.mu.Lock()
	b.settings.ExitDelay = 1
	b.mu.Unlock()

	b.ArmAway()
	require.True(t, b.IsArming())
	waitFor(t, 3*time.Second, func() bool { return hooks.armedAway > 0 })
	require.True(t, b.IsArmedAway())
}

func TestDuressPinSilentlyAlarmsWhileDisarming(t *testing.T) {
	b, hooks, sender := newTestStation(t)
	require.NoError(t, b.SetDuressPIN("9999"))
	require.NoError(t, b.AddComponent("kp", message.DeviceKeypad, "KEYPD", nil, false))

	m, err := message.NewKeypadPin("KEYPD", 0, message.EvDisarmPinRequest, "9999")
	require.NoError(t, err)
	b.Handle(m)

	require.Equal(t, 1, hooks.disarmed)
	require.Equal(t, 1, hooks.alarmCount())
	require.Equal(t, 0, hooks.sirenStart, "duress alarm must stay silent")

	resp := sender.last()
	require.NotNil(t, resp)
	require.Equal(t, message.EvDisarmPinRequest, resp.EventByte)
}

func TestComponentMapPreservesEnrollmentOrder(t *testing.T) {
	b, _, _ := newTestStation(t)
	require.NoError(t, b.AddComponent("front door", message.DeviceEntrySensor, "ENTR1", nil, false))
	require.NoError(t, b.AddComponent("back door", message.DeviceEntrySensor, "ENTR2", nil, false))
	require.NoError(t, b.AddComponent("garage", message.DeviceEntrySensor, "ENTR3", nil, false))

	b.mu.Lock()
	defer b.mu.Unlock()
	c0, left0, right0, ok0 := b.components.at(0)
	require.True(t, ok0)
	require.Equal(t, "ENTR1", c0.SN)
	require.False(t, left0)
	require.True(t, right0)

	c2, left2, right2, ok2 := b.components.at(2)
	require.True(t, ok2)
	require.Equal(t, "ENTR3", c2.SN)
	require.True(t, left2)
	require.False(t, right2)
}

func TestKeypadPanicDisabledSuppressesAlarm(t *testing.T) {
	setting := int(KeypadPanicDisabled)
	b, hooks, _ := newTestStation(t)
	require.NoError(t, b.AddComponent("kp", message.DeviceKeypad, "KEYPD", &setting, false))

	m := message.NewKeypadMessage("KEYPD", 0x22, 0, message.EvPanicRequest, nil)
	b.Handle(m)

	require.Equal(t, 0, hooks.alarmCount())
}

func TestEnrollMotionSensorThenDuplicateIsRejected(t *testing.T) {
	b, _, sender := newTestStation(t)
	require.NoError(t, b.AddComponent("kp", message.DeviceKeypad, "KEYPD", nil, false))

	body := message.NewComponentSerialBody("MOTN1", true, true)
	add := message.NewKeypadMessage("KEYPD", 0x66, 0, message.EvAddMotionSensorMenuRequest, body)
	b.Handle(add)

	first := sender.last()
	require.NotNil(t, first)
	require.Equal(t, []byte{byte(message.ResponseComponentAdded)}, first.Body)

	b.Handle(add)
	second := sender.last()
	require.Equal(t, []byte{byte(message.ResponseComponentAlreadyAdded)}, second.Body)
}

func TestEntrySensorTripAfterDelayAlarms(t *testing.T) {
	b, hooks, _ := newTestStation(t)
	b.mu.Lock()
	b.settings.EntryDelayAway = 1
	b.mu.Unlock()
	setting := int(EntrySensorAlarmHomeAndAway)
	require.NoError(t, b.AddComponent("front door", message.DeviceEntrySensor, "ENTR1", &setting, false))

	b.ArmAway()
	b.mu.Lock()
	b.armed = StateArmedAway
	b.timeLeft = 0
	b.countdownGen++
	b.mu.Unlock()

	trip := message.NewSensorMessage("ENTR1", message.OriginEntrySensor, 0, message.EntryOpen)
	b.Handle(trip)

	waitFor(t, 3*time.Second, func() bool { return hooks.alarmCount() > 0 })
}

func TestExtendedStatusRequestRespondsWithCurrentState(t *testing.T) {
	b, _, sender := newTestStation(t)
	require.NoError(t, b.AddComponent("kp", message.DeviceKeypad, "KEYPD", nil, false))

	req := message.NewKeypadMessage("KEYPD", 0x22, 0, message.EvExtendedStatusRequest, nil)
	b.Handle(req)

	resp := sender.last()
	require.NotNil(t, resp)
	st, err := resp.ExtendedStatus()
	require.NoError(t, err)
	require.Equal(t, message.ArmedStatusOff, st.Armed)
}
