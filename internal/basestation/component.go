package basestation

import (
	"time"

	"github.com/sscomm/simplisafe-rf/internal/message"
)

// Component is one enrolled device, replacing devices.py's per-serial
// dict entry ({"name", "type", "setting", "instant_trigger",
// "last_heartbeat"}) with a typed struct.
type Component struct {
	SN            string
	Name          string
	Type          message.DeviceType
	Setting       int
	InstantTrip   bool
	LastHeartbeat time.Time
}

// hasInstantTrip reports whether t is one of the three component kinds
// devices.py's add_component coerces instant_trigger for; every other
// kind always has it forced to false (disabled has no meaning).
func hasInstantTrip(t message.DeviceType) bool {
	switch t {
	case message.DeviceEntrySensor, message.DeviceMotionSensor, message.DeviceGlassbreakSensor:
		return true
	default:
		return false
	}
}

// componentMap is an insertion-ordered enrolled-component set: order
// matters for the remove-component scroll menu's index addressing
// (devices.py's list(self._components)[n]).
type componentMap struct {
	order []string
	byKey map[string]Component
}

func newComponentMap() *componentMap {
	return &componentMap{byKey: make(map[string]Component)}
}

func (m *componentMap) add(c Component) {
	if !hasInstantTrip(c.Type) {
		c.InstantTrip = false
	}
	if _, exists := m.byKey[c.SN]; !exists {
		m.order = append(m.order, c.SN)
	}
	m.byKey[c.SN] = c
}

func (m *componentMap) remove(sn string) {
	if _, ok := m.byKey[sn]; !ok {
		return
	}
	delete(m.byKey, sn)
	for i, k := range m.order {
		if k == sn {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *componentMap) get(sn string) (Component, bool) {
	c, ok := m.byKey[sn]
	return c, ok
}

func (m *componentMap) len() int {
	return len(m.order)
}

// at returns the nth enrolled component in enrollment order, plus
// whether it has a left/right neighbor, as required by the
// remove-component scroll menu.
func (m *componentMap) at(n int) (c Component, left, right bool, ok bool) {
	if n < 0 || n >= len(m.order) {
		return Component{}, false, false, false
	}
	c = m.byKey[m.order[n]]
	return c, n != 0, n != len(m.order)-1, true
}

func (m *componentMap) keypads() []Component {
	var out []Component
	for _, sn := range m.order {
		c := m.byKey[sn]
		if c.Type == message.DeviceKeypad {
			out = append(out, c)
		}
	}
	return out
}

func (m *componentMap) all() []Component {
	out := make([]Component, 0, len(m.order))
	for _, sn := range m.order {
		out = append(out, m.byKey[sn])
	}
	return out
}
