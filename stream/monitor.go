// SPDX-License-Identifier: EPL-2.0

package stream

// Monitor observes bytes as a MonitorReader reads them.
type Monitor interface {
	ProcessByte(b byte)
	ProcessBytes(buf []byte)
}

// MonitorReader passes every byte read from an inner reader to a Monitor.
type MonitorReader[M Monitor] struct {
	inner   ByteReader
	monitor M
}

func NewMonitorReader[M Monitor](inner ByteReader, monitor M) *MonitorReader[M] {
	return &MonitorReader[M]{inner: inner, monitor: monitor}
}

// Monitor returns the monitor.
func (m *MonitorReader[M]) Monitor() M { return m.monitor }

// Inner returns the wrapped reader.
func (m *MonitorReader[M]) Inner() ByteReader { return m.inner }

func (m *MonitorReader[M]) ReadByte() (byte, error) {
	b, err := m.inner.ReadByte()
	if err != nil {
		return 0, err
	}
	m.monitor.ProcessByte(b)
	return b, nil
}

func (m *MonitorReader[M]) ReadExact(buf []byte) error {
	if err := m.inner.ReadExact(buf); err != nil {
		return err
	}
	m.monitor.ProcessBytes(buf)
	return nil
}

func (m *MonitorReader[M]) ReadDoubleBytes() ([2]byte, error) {
	b, err := m.inner.ReadDoubleBytes()
	if err == nil {
		m.monitor.ProcessBytes(b[:])
	}
	return b, err
}

func (m *MonitorReader[M]) ReadTripleBytes() ([3]byte, error) {
	b, err := m.inner.ReadTripleBytes()
	if err == nil {
		m.monitor.ProcessBytes(b[:])
	}
	return b, err
}

func (m *MonitorReader[M]) ReadQuadBytes() ([4]byte, error) {
	b, err := m.inner.ReadQuadBytes()
	if err == nil {
		m.monitor.ProcessBytes(b[:])
	}
	return b, err
}

// IgnoreBytes reads and monitors the skipped bytes.
func (m *MonitorReader[M]) IgnoreBytes(n uint64) error {
	var scratch [256]byte

	for n > 0 {
		chunk := scratch[:min(n, uint64(len(scratch)))]
		if err := m.ReadExact(chunk); err != nil {
			return err
		}
		n -= uint64(len(chunk))
	}

	return nil
}

func (m *MonitorReader[M]) Pos() uint64 { return m.inner.Pos() }
