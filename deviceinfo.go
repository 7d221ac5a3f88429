package lumen

import "github.com/gogpu/lumen/engine"

// DeviceInfo describes the compute device backing a session.
// See [engine.DeviceInfo] for the fields and derived values.
type DeviceInfo = engine.DeviceInfo

// DeviceInfo reports static device capabilities. The engine is queried
// once on first call and the snapshot is cached for the session's
// lifetime. If that query fails, the failure is logged and the zero
// snapshot is cached instead; open a new session to retry.
func (s *Session) DeviceInfo() DeviceInfo {
	s.infoOnce.Do(func() {
		info, err := s.eng.DeviceInfo()
		if err != nil {
			Logger().Warn("lumen: device info query failed", "engine", s.eng.Name(), "error", err)
			return
		}
		s.info = info
	})
	return s.info
}
