package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
)

// Modbus TCP function codes used by the bridge.
const (
	fcReadHolding   uint8 = 3
	fcReadInput     uint8 = 4
	fcWriteSingle   uint8 = 6
	fcWriteMultiple uint8 = 16
)

const mbapLen = 7

// client owns one TCP session and the request/response framing.
//
// MBAP: TID(2) PID(2=0) LEN(2) UID(1), then the PDU. All words are
// big-endian. One request in flight at a time; the caller serializes.
type client struct {
	conn    net.Conn
	unitID  uint8
	timeout time.Duration
	tid     uint16
	logger  *slog.Logger
}

func dial(endpoint string, unitID uint8, timeout time.Duration, logger *slog.Logger) (*client, error) {
	conn, err := net.DialTimeout("tcp", endpoint, timeout)
	if err != nil {
		return nil, err
	}
	return &client{
		conn:    conn,
		unitID:  unitID,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (c *client) close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *client) nextTID() uint16 {
	c.tid++
	return c.tid
}

func (c *client) buildADU(fc uint8, pdu []byte) ([]byte, uint16) {
	tid := c.nextTID()

	adu := make([]byte, mbapLen+1+len(pdu))
	binary.BigEndian.PutUint16(adu[0:2], tid)
	binary.BigEndian.PutUint16(adu[2:4], 0) // protocol id
	binary.BigEndian.PutUint16(adu[4:6], uint16(2+len(pdu)))
	adu[6] = c.unitID
	adu[7] = fc
	copy(adu[8:], pdu)

	return adu, tid
}

// roundTrip sends one request and waits for its matching response.
// Frames whose transaction id does not match the request are stale
// leftovers from before a reconnect: they are logged and discarded,
// and the read keeps waiting until the deadline.
func (c *client) roundTrip(fc uint8, pdu []byte) ([]byte, error) {
	if c == nil || c.conn == nil {
		return nil, ErrNotConnected
	}

	adu, tid := c.buildADU(fc, pdu)

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if _, err := c.conn.Write(adu); err != nil {
		return nil, err
	}

	for {
		respFC, payload, err := c.readFrame(tid)
		if err != nil {
			return nil, err
		}
		if respFC == 0 {
			// stale frame discarded, keep waiting
			continue
		}

		if respFC == fc|0x80 {
			if len(payload) < 1 {
				return nil, &ProtocolError{Reason: "exception response without code"}
			}
			return nil, &DeviceError{Function: fc, Code: payload[0]}
		}
		if respFC != fc {
			return nil, &ProtocolError{Reason: fmt.Sprintf("function mismatch: got=%d want=%d", respFC, fc)}
		}
		return payload, nil
	}
}

// readFrame reads one ADU. A zero function code with nil error means
// the frame carried a foreign transaction id and was dropped.
func (c *client) readFrame(wantTID uint16) (uint8, []byte, error) {
	var header [mbapLen]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return 0, nil, err
	}

	tid := binary.BigEndian.Uint16(header[0:2])
	pid := binary.BigEndian.Uint16(header[2:4])
	length := binary.BigEndian.Uint16(header[4:6])
	unit := header[6]

	if length < 2 || length > 254 {
		return 0, nil, &ProtocolError{Reason: fmt.Sprintf("implausible frame length %d", length)}
	}

	body := make([]byte, length-1)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return 0, nil, err
	}

	if tid != wantTID {
		c.logger.Warn("discarding stale response frame",
			"got_tid", tid, "want_tid", wantTID)
		return 0, nil, nil
	}
	if pid != 0 {
		return 0, nil, &ProtocolError{Reason: fmt.Sprintf("protocol id %d", pid)}
	}
	if unit != c.unitID {
		return 0, nil, &ProtocolError{Reason: fmt.Sprintf("unit id mismatch: got=%d want=%d", unit, c.unitID)}
	}

	return body[0], body[1:], nil
}

// ---- register operations ----

func (c *client) readRegisters(fc uint8, addr, qty uint16) ([]uint16, error) {
	var pdu [4]byte
	binary.BigEndian.PutUint16(pdu[0:2], addr)
	binary.BigEndian.PutUint16(pdu[2:4], qty)

	payload, err := c.roundTrip(fc, pdu[:])
	if err != nil {
		return nil, err
	}

	if len(payload) < 1 {
		return nil, &ProtocolError{Reason: "short read payload"}
	}
	byteCount := int(payload[0])
	if byteCount != int(qty)*2 || len(payload)-1 < byteCount {
		return nil, &ProtocolError{Reason: fmt.Sprintf("byte count %d for %d registers", byteCount, qty)}
	}

	regs := make([]uint16, qty)
	for i := range regs {
		regs[i] = binary.BigEndian.Uint16(payload[1+2*i:])
	}
	return regs, nil
}

func (c *client) writeSingle(addr, value uint16) error {
	var pdu [4]byte
	binary.BigEndian.PutUint16(pdu[0:2], addr)
	binary.BigEndian.PutUint16(pdu[2:4], value)

	payload, err := c.roundTrip(fcWriteSingle, pdu[:])
	if err != nil {
		return err
	}
	// echo of address + value
	if len(payload) != 4 ||
		binary.BigEndian.Uint16(payload[0:2]) != addr ||
		binary.BigEndian.Uint16(payload[2:4]) != value {
		return &ProtocolError{Reason: "write-single echo mismatch"}
	}
	return nil
}

func (c *client) writeMultiple(addr uint16, values []uint16) error {
	pdu := make([]byte, 5+2*len(values))
	binary.BigEndian.PutUint16(pdu[0:2], addr)
	binary.BigEndian.PutUint16(pdu[2:4], uint16(len(values)))
	pdu[4] = uint8(2 * len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(pdu[5+2*i:], v)
	}

	payload, err := c.roundTrip(fcWriteMultiple, pdu)
	if err != nil {
		return err
	}
	if len(payload) != 4 ||
		binary.BigEndian.Uint16(payload[0:2]) != addr ||
		binary.BigEndian.Uint16(payload[2:4]) != uint16(len(values)) {
		return &ProtocolError{Reason: "write-multiple echo mismatch"}
	}
	return nil
}
